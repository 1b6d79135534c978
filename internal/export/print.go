package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/internal/render"
)

const printScript = `<script>window.addEventListener('load',function(){window.print()});</script>
`

// PrintDialogExporter writes the page as HTML that opens the print dialog on
// load, then hands it to the system browser.
type PrintDialogExporter struct {
	Open browser.Opener
}

// Name implements ExportTarget.
func (e PrintDialogExporter) Name() string { return "print-dialog" }

// Export implements ExportTarget. The HTML is written next to dest with an
// .html extension. If no browser opens it, the path is still returned along
// with ErrNotOpened.
func (e PrintDialogExporter) Export(_ context.Context, page render.Page, dest string) (string, error) {
	doc, err := render.HTML(page, printScript)
	if err != nil {
		return "", err
	}
	path := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".html"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	u, err := browser.FileURL(path)
	if err != nil {
		return path, fmt.Errorf("open print dialog: %w: %w", ErrNotOpened, err)
	}
	open := e.Open
	if open == nil {
		open = browser.Open
	}
	if err := open(u); err != nil {
		return path, fmt.Errorf("open print dialog: %w: %w", ErrNotOpened, err)
	}
	return path, nil
}
