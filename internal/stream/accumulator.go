// Package stream folds streamed completion fragments into one assistant message.
//
// A Run is keyed to the session it started for, never to the active session,
// so switching sessions mid-stream cannot misattribute the result.
package stream

import (
	"fmt"
	"strings"
	"sync"
	"time"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/session"
)

type State string

const (
	StateIdle       State = "idle"
	StateSending    State = "sending"
	StateStreaming  State = "streaming"
	StateFinalizing State = "finalizing"
	StateErroring   State = "erroring"
)

// Sink receives finished messages. The session store satisfies it.
type Sink interface {
	AppendMessage(sessionID string, msg model.Message) (model.Message, error)
}

// Draft is the live view of an unfinished run.
type Draft struct {
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Content   string    `json:"content"`
	StartedAt time.Time `json:"started_at"`
}

// Accumulator tracks at most one run per session.
type Accumulator struct {
	sink     Sink
	notifier session.Notifier

	mu   sync.Mutex
	runs map[string]*Run
}

func NewAccumulator(sink Sink, notifier session.Notifier) *Accumulator {
	if notifier == nil {
		notifier = session.Notifiers{}
	}
	return &Accumulator{sink: sink, notifier: notifier, runs: make(map[string]*Run)}
}

// Begin starts a run for sessionID. A second run for the same session is
// rejected with ErrInvalidState while the first is unfinished.
func (a *Accumulator) Begin(sessionID string) (*Run, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.runs[sessionID]; busy {
		return nil, fmt.Errorf("session %s already has a response in progress: %w", sessionID, app_errors.ErrInvalidState)
	}
	r := &Run{acc: a, sessionID: sessionID, state: StateSending, startedAt: time.Now().UTC()}
	a.runs[sessionID] = r
	return r, nil
}

// Draft returns the in-progress state for sessionID, if any.
func (a *Accumulator) Draft(sessionID string) (Draft, bool) {
	a.mu.Lock()
	r, ok := a.runs[sessionID]
	a.mu.Unlock()
	if !ok {
		return Draft{}, false
	}
	return r.snapshot(), true
}

// InFlight returns the number of unfinished runs.
func (a *Accumulator) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.runs)
}

func (a *Accumulator) release(r *Run) {
	a.mu.Lock()
	if a.runs[r.sessionID] == r {
		delete(a.runs, r.sessionID)
	}
	a.mu.Unlock()
	a.notifier.Notify(session.Event{Type: session.EventDraftCleared, SessionID: r.sessionID})
}

// Run is one streamed response. Every method after the first finishing call
// (Complete, Fail or Discard) returns ErrInvalidState.
type Run struct {
	acc       *Accumulator
	sessionID string
	startedAt time.Time

	mu       sync.Mutex
	state    State
	buf      strings.Builder
	finished bool
}

func (r *Run) SessionID() string { return r.sessionID }

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Fragment appends text in arrival order and publishes the partial buffer.
func (r *Run) Fragment(text string) error {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return r.finishedErr()
	}
	r.state = StateStreaming
	r.buf.WriteString(text)
	partial := r.buf.String()
	r.mu.Unlock()

	r.acc.notifier.Notify(session.Event{Type: session.EventDraftUpdated, SessionID: r.sessionID, Draft: partial})
	return nil
}

// Complete turns the buffer into one assistant message and appends it.
func (r *Run) Complete(modelName string) (model.Message, error) {
	content, err := r.finish(StateFinalizing, true)
	if err != nil {
		return model.Message{}, err
	}
	return r.commit(model.Message{Role: model.RoleAssistant, Content: content, Model: modelName})
}

// Fail drops any partial text and appends a single notice message instead.
func (r *Run) Fail(notice string) (model.Message, error) {
	if _, err := r.finish(StateErroring, false); err != nil {
		return model.Message{}, err
	}
	return r.commit(model.Message{Role: model.RoleAssistant, Content: notice})
}

// Discard drops the run without appending anything.
func (r *Run) Discard() error {
	if _, err := r.finish(StateIdle, false); err != nil {
		return err
	}
	r.acc.release(r)
	return nil
}

func (r *Run) finish(next State, keep bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return "", r.finishedErr()
	}
	r.finished = true
	r.state = next
	content := ""
	if keep {
		content = r.buf.String()
	}
	r.buf.Reset()
	return content, nil
}

func (r *Run) commit(msg model.Message) (model.Message, error) {
	msg.Timestamp = time.Now().UTC()
	stored, err := r.acc.sink.AppendMessage(r.sessionID, msg)

	r.mu.Lock()
	r.state = StateIdle
	r.mu.Unlock()
	r.acc.release(r)

	if err != nil {
		return model.Message{}, fmt.Errorf("could not append response to session %s: %w", r.sessionID, err)
	}
	return stored, nil
}

func (r *Run) snapshot() Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Draft{SessionID: r.sessionID, State: r.state, Content: r.buf.String(), StartedAt: r.startedAt}
}

func (r *Run) finishedErr() error {
	return fmt.Errorf("run for session %s is already finished: %w", r.sessionID, app_errors.ErrInvalidState)
}
