package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/crowlands/crowlands/internal/render"
)

// DOMSnapshotExporter renders the page's HTML in a headless Chromium and
// prints it to PDF.
type DOMSnapshotExporter struct {
	// Bin is the browser binary. Empty lets rod find or download one.
	Bin      string
	Headless bool
}

// Name implements ExportTarget.
func (e DOMSnapshotExporter) Name() string { return "dom-snapshot" }

// Export implements ExportTarget.
func (e DOMSnapshotExporter) Export(ctx context.Context, page render.Page, dest string) (string, error) {
	doc, err := render.HTML(page, "")
	if err != nil {
		return "", err
	}

	l := launcher.New().Headless(e.Headless)
	if e.Bin != "" {
		l = l.Bin(e.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()
	defer l.Kill()

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return "", fmt.Errorf("connect to chrome: %w", err)
	}
	defer b.Close() //nolint:errcheck

	p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	if err := p.SetDocumentContent(doc); err != nil {
		return "", fmt.Errorf("set content: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	stream, err := p.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return "", fmt.Errorf("print to pdf: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()       //nolint:errcheck
		os.Remove(dest) //nolint:errcheck
		return "", fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close pdf: %w", err)
	}
	return dest, nil
}
