package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

// Save messages.
const (
	MsgLoginToSave  = "Log in to keep spells in your grimoire."
	MsgSaved        = "Saved to your grimoire."
	MsgSaveFailed   = "Could not save your spell. Please try again."
	MsgUpgradeToUse = "This needs a paid grimoire."
)

// Save errors.
var (
	ErrLoginRequired = errors.New("login required")
	ErrSaveInFlight  = errors.New("save already in progress")
)

// Saver is the API call behind saving.
type Saver interface {
	SaveSpell(ctx context.Context, req domain.SaveSpellRequest) (*domain.SavedGrimoireEntry, error)
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) *time.Timer

// SaveConfig wires a SaveAction.
type SaveConfig struct {
	Saver  Saver
	Tokens client.TokenSource
	Notify Notifier
	// PromptLogin runs when there is no token or the token was rejected.
	PromptLogin func()
	// Open navigates to the upgrade page.
	Open         browser.Opener
	UpgradeURL   string
	UpgradeDelay time.Duration
	AfterFunc    AfterFunc
	Logger       *zap.Logger
}

// SaveAction saves the current page to the grimoire. One save runs at a
// time.
type SaveAction struct {
	cfg      SaveConfig
	inFlight atomic.Bool
}

// NewSaveAction fills in defaults for unset hooks.
func NewSaveAction(cfg SaveConfig) *SaveAction {
	if cfg.Notify == nil {
		cfg.Notify = func(Notify) {}
	}
	if cfg.PromptLogin == nil {
		cfg.PromptLogin = func() {}
	}
	if cfg.Open == nil {
		cfg.Open = browser.Open
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = time.AfterFunc
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &SaveAction{cfg: cfg}
}

// InFlight reports whether a save is running; the save control is disabled
// while it is.
func (a *SaveAction) InFlight() bool { return a.inFlight.Load() }

// SaveRequest builds the payload for a page: the spell plus the guide's id,
// name and title, and the image when there is one.
func SaveRequest(p render.Page) domain.SaveSpellRequest {
	req := domain.SaveSpellRequest{SpellData: p.Spell, ImageBase64: p.ImageBase64}
	if p.Guide != nil {
		req.ArchetypeID = p.Guide.ID
		req.ArchetypeName = p.Guide.Name
		req.ArchetypeTitle = p.Guide.Title
	}
	return req
}

// Save stores p in the grimoire.
func (a *SaveAction) Save(ctx context.Context, p render.Page) (*domain.SavedGrimoireEntry, error) {
	if a.cfg.Tokens == nil || a.cfg.Tokens.Token() == "" {
		a.cfg.Notify(Notify{Level: LevelWarning, Message: MsgLoginToSave})
		a.cfg.PromptLogin()
		return nil, ErrLoginRequired
	}
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSaveInFlight
	}
	defer a.inFlight.Store(false)

	entry, err := a.cfg.Saver.SaveSpell(ctx, SaveRequest(p))
	if err == nil {
		a.cfg.Notify(Notify{Level: LevelSuccess, Message: MsgSaved})
		return entry, nil
	}

	switch KindOf(err) {
	case KindFeatureLocked:
		a.cfg.Notify(Notify{Level: LevelWarning, Message: serverMessage(err, MsgUpgradeToUse)})
		a.scheduleUpgrade()
	case KindUnauthorized:
		a.cfg.Notify(Notify{Level: LevelWarning, Message: MsgLoginAgain})
		a.cfg.PromptLogin()
	default:
		a.cfg.Logger.Error("save spell failed", zap.Error(err))
		a.cfg.Notify(Notify{Level: LevelError, Message: MsgSaveFailed})
	}
	return nil, fmt.Errorf("workflow.Save: %w", err)
}

func (a *SaveAction) scheduleUpgrade() {
	if a.cfg.UpgradeURL == "" {
		return
	}
	url, open, logger := a.cfg.UpgradeURL, a.cfg.Open, a.cfg.Logger
	a.cfg.AfterFunc(a.cfg.UpgradeDelay, func() {
		if err := open(url); err != nil {
			logger.Warn("open upgrade page", zap.String("url", url), zap.Error(err))
		}
	})
}
