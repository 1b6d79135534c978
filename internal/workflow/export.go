package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/export"
	"github.com/crowlands/crowlands/internal/render"
)

// Export messages.
const (
	MsgPrintDialog  = `Your browser's print dialog is open. Choose "Save as PDF" to keep a copy.`
	MsgExportFailed = "Could not export your spell. Please try again."
	// MsgOpenToPrint takes the path of the printable page.
	MsgOpenToPrint = `No browser could be opened. Open %s and choose "Save as PDF" to keep a copy.`
)

// ErrExportInFlight is returned when an export is already running.
var ErrExportInFlight = errors.New("export already in progress")

// Exporter is the export chain.
type Exporter interface {
	Export(ctx context.Context, page render.Page, dest string) (export.Outcome, error)
}

// ExportAction writes an offline copy of a page. One export runs at a time.
type ExportAction struct {
	exporter Exporter
	dir      string
	notify   Notifier
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewExportAction creates an ExportAction writing into dir.
func NewExportAction(exporter Exporter, dir string, notify Notifier, logger *zap.Logger) *ExportAction {
	if notify == nil {
		notify = func(Notify) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportAction{exporter: exporter, dir: dir, notify: notify, logger: logger}
}

// InFlight reports whether an export is running.
func (a *ExportAction) InFlight() bool { return a.inFlight.Load() }

// Export writes p to dir, named after the spell, and saves its image next
// to it when there is one.
func (a *ExportAction) Export(ctx context.Context, p render.Page) (export.Outcome, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return export.Outcome{}, ErrExportInFlight
	}
	defer a.inFlight.Store(false)

	dest := filepath.Join(a.dir, export.FileName(p.Spell.Title(), ".pdf"))
	out, err := a.exporter.Export(ctx, p, dest)
	if err != nil {
		a.logger.Error("export failed", zap.Error(err))
		a.notify(Notify{Level: LevelError, Message: MsgExportFailed})
		return out, fmt.Errorf("workflow.Export: %w", err)
	}

	if p.ImageBase64 != "" {
		if img, err := export.WriteImage(p, dest); err != nil {
			a.logger.Warn("write spell image", zap.Error(err))
		} else {
			a.logger.Debug("wrote spell image", zap.String("path", img))
		}
	}

	switch {
	case out.NotOpened:
		a.notify(Notify{Level: LevelWarning, Message: fmt.Sprintf(MsgOpenToPrint, out.Path)})
	case out.FellBack:
		a.notify(Notify{Level: LevelInfo, Message: MsgPrintDialog})
	default:
		a.notify(Notify{Level: LevelSuccess, Message: "Saved PDF to " + out.Path})
	}
	return out, nil
}
