package workflow

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/pkg/domain"
)

// MsgCopied confirms a copy.
const MsgCopied = "Copied to clipboard."

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard and, when no clipboard tool is
// available (SSH sessions, bare terminals), asks the terminal to copy via
// OSC 52.
type SystemClipboard struct {
	// Terminal receives the OSC 52 sequence. Nil means stdout.
	Terminal io.Writer
}

// WriteAll implements Clipboard.
func (c SystemClipboard) WriteAll(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	w := c.Terminal
	if w == nil {
		w = os.Stdout
	}
	termenv.NewOutput(w).Copy(text)
	return nil
}

// CopyAction copies a spell's text template. It never fails from the
// user's point of view.
type CopyAction struct {
	clip   Clipboard
	notify Notifier
	logger *zap.Logger
}

// NewCopyAction creates a CopyAction. A nil Clipboard uses SystemClipboard.
func NewCopyAction(clip Clipboard, notify Notifier, logger *zap.Logger) *CopyAction {
	if clip == nil {
		clip = SystemClipboard{}
	}
	if notify == nil {
		notify = func(Notify) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CopyAction{clip: clip, notify: notify, logger: logger}
}

// Copy writes the spell's template to the clipboard and returns it.
func (a *CopyAction) Copy(s domain.Spell) string {
	return a.CopyText(render.CopyText(s))
}

// CopyText copies already formatted text, such as a tarot reading.
func (a *CopyAction) CopyText(text string) string {
	if err := a.clip.WriteAll(text); err != nil {
		a.logger.Debug("clipboard write failed", zap.Error(err))
	}
	a.notify(Notify{Level: LevelSuccess, Message: MsgCopied})
	return text
}
