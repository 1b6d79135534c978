package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crowlands/crowlands/pkg/domain"
)

// ErrSuperseded is returned to a Generate caller whose response arrived
// after a newer request started or the user moved on. The response was
// discarded.
var ErrSuperseded = errors.New("request superseded")

// Generator is the API call behind spell generation.
type Generator interface {
	GenerateSpell(ctx context.Context, req domain.SpellRequest) (*domain.GenerationResult, error)
}

// StatusFetcher re-reads the subscription status.
type StatusFetcher interface {
	SubscriptionStatus(ctx context.Context) (*domain.SubscriptionStatus, error)
}

// Notifier shows a notification to the user.
type Notifier func(Notify)

// Option configures a Workflow.
type Option func(*Workflow)

// WithNotifier sets where notifications go.
func WithNotifier(n Notifier) Option { return func(w *Workflow) { w.notify = n } }

// WithLogger sets the logger for unexpected errors.
func WithLogger(l *zap.Logger) Option { return func(w *Workflow) { w.logger = l } }

// WithStatusRefresh enables the background status refresh after a
// generation that reports limit info. onStatus may be nil.
func WithStatusRefresh(f StatusFetcher, onStatus func(*domain.SubscriptionStatus)) Option {
	return func(w *Workflow) {
		w.status = f
		w.onStatus = onStatus
	}
}

// WithLoginPrompt sets what happens when the user must log in.
func WithLoginPrompt(f func()) Option { return func(w *Workflow) { w.promptLogin = f } }

// Workflow runs spell generation requests. Only the latest request's
// response is applied. It is safe for concurrent use.
type Workflow struct {
	gen         Generator
	status      StatusFetcher
	onStatus    func(*domain.SubscriptionStatus)
	notify      Notifier
	promptLogin func()
	logger      *zap.Logger

	mu     sync.Mutex
	snap   Snapshot
	seq    uint64
	cancel context.CancelFunc

	bg sync.WaitGroup
}

// New creates a Workflow in the Idle state.
func New(gen Generator, opts ...Option) *Workflow {
	w := &Workflow{
		gen:         gen,
		notify:      func(Notify) {},
		promptLogin: func() {},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Generate validates req, sends it, and applies the response. Invalid
// input returns a *ValidationError without any network call. A response
// that is no longer current returns ErrSuperseded and changes nothing.
// Server failures are reported through the returned Snapshot, not the error.
func (w *Workflow) Generate(ctx context.Context, req domain.SpellRequest) (Snapshot, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		w.mu.Lock()
		snap, effects := Transition(w.snap, Invalid{Err: err})
		w.snap = snap
		w.mu.Unlock()
		w.run(effects)
		return snap, &ValidationError{Err: err}
	}

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.seq++
	seq := w.seq
	callCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	snap, effects := Transition(w.snap, Submitted{Seq: seq, Request: req})
	w.snap = snap
	w.mu.Unlock()
	defer cancel()
	w.run(effects)

	res, err := w.gen.GenerateSpell(callCtx, req)
	var ev Event = Resolved{Seq: seq, Result: res}
	if err != nil {
		ev = Rejected{Seq: seq, Err: err}
	}

	w.mu.Lock()
	if !current(w.snap, seq) {
		w.mu.Unlock()
		w.logger.Debug("discarding superseded response", zap.Uint64("seq", seq))
		return Snapshot{}, ErrSuperseded
	}
	snap, effects = Transition(w.snap, ev)
	w.snap = snap
	w.mu.Unlock()
	w.run(effects)
	return snap, nil
}

// Reset returns to Idle ("new spell" or "try again"), cancelling any
// request in flight.
func (w *Workflow) Reset() Snapshot { return w.leave(Reset{}) }

// Abandon is Reset for the user navigating away.
func (w *Workflow) Abandon() Snapshot { return w.leave(Abandoned{}) }

func (w *Workflow) leave(e Event) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.snap, _ = Transition(w.snap, e)
	return w.snap
}

// Wait blocks until background status refreshes finish.
func (w *Workflow) Wait() { w.bg.Wait() }

func (w *Workflow) run(effects []Effect) {
	for _, eff := range effects {
		switch eff := eff.(type) {
		case Notify:
			w.notify(eff)
		case RefreshStatus:
			w.refresh()
		case LogError:
			w.logger.Error("spell generation failed", zap.Error(eff.Err))
		case PromptLogin:
			w.promptLogin()
		case CallGenerate:
			// performed inline by Generate
		}
	}
}

// refresh re-reads the subscription status without blocking the caller.
// A failure is only logged.
func (w *Workflow) refresh() {
	if w.status == nil {
		return
	}
	w.bg.Add(1)
	go func() {
		defer w.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		st, err := w.status.SubscriptionStatus(ctx)
		if err != nil {
			w.logger.Warn("subscription status refresh failed", zap.Error(err))
			return
		}
		if w.onStatus != nil {
			w.onStatus(st)
		}
	}()
}

// String is a short description for logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s#%d", s.State, s.Seq)
}
