// Package workflow drives spell generation and the actions on a generated
// page. Generation is a state machine: Transition is pure and returns the
// side effects the caller must perform, so the CLI and the TUI share one set
// of rules.
package workflow

import (
	"errors"

	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

// User-facing messages.
const (
	MsgEmptyIntention = "Tell the crows what you seek before casting."
	MsgGenericRetry   = "The crows lost their way. Please try again."
	MsgLoginAgain     = "Your session has ended. Please log in again."
	MsgLimitReached   = "You have used all of your spells for now."
	MsgSpellReady     = "Your spell has arrived."
)

// State is the generation state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateLimitReached
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateLimitReached:
		return "limit_reached"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state waits for a Reset.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateLimitReached || s == StateFailed
}

// ErrorKind is the failure taxonomy shown to users.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindFeatureLocked
	KindQuotaExceeded
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindFeatureLocked:
		return "feature_locked"
	case KindQuotaExceeded:
		return "quota_exceeded"
	}
	return "unexpected"
}

// KindOf classifies an error returned by the API client. Validation errors
// raised locally map to KindValidation.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	switch client.Classify(err) {
	case client.KindUnauthorized:
		return KindUnauthorized
	case client.KindFeatureLocked:
		return KindFeatureLocked
	case client.KindQuotaExceeded:
		return KindQuotaExceeded
	}
	return KindUnexpected
}

// ValidationError is a local, pre-network rejection of a request.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Snapshot is the workflow's observable state.
type Snapshot struct {
	State   State
	Seq     uint64 // sequence number of the current or last request
	Request domain.SpellRequest
	Result  *domain.GenerationResult
	Kind    ErrorKind
	Message string // user-facing text for LimitReached and Failed
}

// Event is an input to Transition.
type Event interface{ event() }

// Submitted starts request Seq. Seq must be greater than any earlier one.
type Submitted struct {
	Seq     uint64
	Request domain.SpellRequest
}

// Resolved carries a successful response for request Seq.
type Resolved struct {
	Seq    uint64
	Result *domain.GenerationResult
}

// Rejected carries a failed response for request Seq.
type Rejected struct {
	Seq uint64
	Err error
}

// Invalid reports a request that failed local validation.
type Invalid struct{ Err error }

// Reset is "new spell" or "try again".
type Reset struct{}

// Abandoned is the user navigating away.
type Abandoned struct{}

func (Submitted) event() {}
func (Resolved) event()  {}
func (Rejected) event()  {}
func (Invalid) event()   {}
func (Reset) event()     {}
func (Abandoned) event() {}

// Level is a notification severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Effect is a side effect Transition asks the caller to perform.
type Effect interface{ effect() }

// CallGenerate issues the API call for request Seq.
type CallGenerate struct {
	Seq     uint64
	Request domain.SpellRequest
}

// Notify shows one message to the user.
type Notify struct {
	Level   Level
	Message string
}

// RefreshStatus re-fetches the subscription status in the background.
type RefreshStatus struct{}

// LogError records an error for diagnostics. It is never shown.
type LogError struct{ Err error }

// PromptLogin asks the user to log in.
type PromptLogin struct{}

func (CallGenerate) effect()  {}
func (Notify) effect()        {}
func (RefreshStatus) effect() {}
func (LogError) effect()      {}
func (PromptLogin) effect()   {}

// Transition applies e to s. It never performs I/O.
func Transition(s Snapshot, e Event) (Snapshot, []Effect) {
	switch e := e.(type) {
	case Submitted:
		if e.Seq <= s.Seq && s.Seq != 0 {
			return s, nil
		}
		return Snapshot{State: StateSubmitting, Seq: e.Seq, Request: e.Request},
			[]Effect{CallGenerate{Seq: e.Seq, Request: e.Request}}

	case Resolved:
		if !current(s, e.Seq) {
			return s, nil
		}
		s.State = StateSuccess
		s.Result = e.Result
		s.Kind = KindNone
		s.Message = ""
		effects := []Effect{Notify{Level: LevelSuccess, Message: MsgSpellReady}}
		if e.Result != nil && e.Result.LimitInfo != nil {
			effects = append(effects, RefreshStatus{})
		}
		return s, effects

	case Rejected:
		if !current(s, e.Seq) {
			return s, nil
		}
		return rejected(s, e.Err)

	case Invalid:
		msg := MsgEmptyIntention
		if e.Err != nil && !errors.Is(e.Err, domain.ErrEmptyIntention) {
			msg = "Your request could not be sent: " + e.Err.Error() + "."
		}
		return s, []Effect{Notify{Level: LevelWarning, Message: msg}}

	case Reset, Abandoned:
		return Snapshot{State: StateIdle, Seq: s.Seq, Request: s.Request}, nil
	}
	return s, nil
}

func current(s Snapshot, seq uint64) bool {
	return s.State == StateSubmitting && s.Seq == seq
}

func rejected(s Snapshot, err error) (Snapshot, []Effect) {
	s.Result = nil
	s.Kind = KindOf(err)
	switch s.Kind {
	case KindQuotaExceeded:
		s.State = StateLimitReached
		s.Message = serverMessage(err, MsgLimitReached)
		return s, []Effect{Notify{Level: LevelWarning, Message: s.Message}}
	case KindUnauthorized:
		s.State = StateFailed
		s.Message = MsgLoginAgain
		return s, []Effect{Notify{Level: LevelWarning, Message: s.Message}, PromptLogin{}}
	case KindFeatureLocked:
		s.State = StateFailed
		s.Message = serverMessage(err, MsgGenericRetry)
		return s, []Effect{Notify{Level: LevelWarning, Message: s.Message}}
	default:
		s.State = StateFailed
		s.Kind = KindUnexpected
		s.Message = MsgGenericRetry
		return s, []Effect{Notify{Level: LevelError, Message: s.Message}, LogError{Err: err}}
	}
}

func serverMessage(err error, fallback string) string {
	if _, msg, ok := client.Reason(err); ok && msg != "" {
		return msg
	}
	return fallback
}
