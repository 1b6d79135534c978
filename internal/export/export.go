// Package export writes an offline copy of a grimoire page. A headless
// browser snapshot to PDF is tried first; when it fails the page is handed
// to the system browser's print dialog instead.
package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/internal/render"
)

// ExportTarget produces an offline copy of a page at or next to dest.
type ExportTarget interface {
	Name() string
	// Export returns the path it wrote.
	Export(ctx context.Context, page render.Page, dest string) (string, error)
}

// Outcome describes a completed export.
type Outcome struct {
	Path   string
	Target string
	// FellBack is true when the primary target failed and the user still has
	// to choose "Save as PDF" in the print dialog.
	FellBack bool
	// NotOpened is true when the printable page was written to Path but no
	// browser could be started; the user has to open it themselves.
	NotOpened  bool
	PrimaryErr error
}

// ErrNotOpened is returned with a path by a target that wrote its file but
// could not hand it to a browser.
var ErrNotOpened = errors.New("written but not opened")

// Fallback tries Primary and, on any error or panic, Secondary.
type Fallback struct {
	Primary   ExportTarget
	Secondary ExportTarget
	Logger    *zap.Logger
}

// NewChain is the standard chain: a headless snapshot through the browser at
// bin (empty means rod's managed browser), then the system print dialog.
func NewChain(bin string, headless bool, open browser.Opener, logger *zap.Logger) Fallback {
	return Fallback{
		Primary:   DOMSnapshotExporter{Bin: bin, Headless: headless},
		Secondary: PrintDialogExporter{Open: open},
		Logger:    logger,
	}
}

// Export runs the fallback chain.
func (f Fallback) Export(ctx context.Context, page render.Page, dest string) (Outcome, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := safeExport(ctx, f.Primary, page, dest)
	if err == nil {
		return Outcome{Path: path, Target: f.Primary.Name()}, nil
	}
	logger.Warn("primary export failed, falling back",
		zap.String("primary", f.Primary.Name()),
		zap.String("secondary", f.Secondary.Name()),
		zap.Error(err))

	path, serr := safeExport(ctx, f.Secondary, page, dest)
	if errors.Is(serr, ErrNotOpened) && path != "" {
		logger.Warn("printable page not opened", zap.String("path", path), zap.Error(serr))
		return Outcome{Path: path, Target: f.Secondary.Name(), FellBack: true, NotOpened: true, PrimaryErr: err}, nil
	}
	if serr != nil {
		return Outcome{}, fmt.Errorf("export.Fallback: %s: %w (after %s: %v)", f.Secondary.Name(), serr, f.Primary.Name(), err)
	}
	return Outcome{Path: path, Target: f.Secondary.Name(), FellBack: true, PrimaryErr: err}, nil
}

// safeExport converts a panic in t into an error.
func safeExport(ctx context.Context, t ExportTarget, page render.Page, dest string) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", t.Name(), r)
		}
	}()
	return t.Export(ctx, page, dest)
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a file name from a spell title, e.g. "hearth-charm.pdf".
func FileName(title, ext string) string {
	base := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "spell"
	}
	return base + ext
}

// ErrNoImage is returned by WriteImage when the page has no image.
var ErrNoImage = errors.New("page has no image")

// WriteImage decodes the page's base64 image next to pdfPath, with a .png
// extension.
func WriteImage(page render.Page, pdfPath string) (string, error) {
	if page.ImageBase64 == "" {
		return "", ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(page.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("export.WriteImage: decode: %w", err)
	}
	path := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("export.WriteImage: %w", err)
	}
	return path, nil
}
