package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/session"
	"flow-chat/backend/internal/stream"
)

// persistTimeout bounds one background durable write.
const persistTimeout = 15 * time.Second

// anonymousIdle is how long an unused anonymous workspace is kept in memory.
const anonymousIdle = 2 * time.Hour

// Workspace is the in-memory state of one identity.
type Workspace struct {
	ident identity.Identity
	Store *session.Store
	Runs  *stream.Accumulator

	loadMu sync.Mutex
	loaded bool
	// lastSeen is guarded by Workspaces.mu.
	lastSeen time.Time
	// persistMu orders durable writes so a later snapshot is never
	// overwritten by an earlier one.
	persistMu sync.Mutex
}

// Identity is the owner of the workspace.
func (w *Workspace) Identity() identity.Identity { return w.ident }

// Workspaces owns one Workspace per identity and mirrors their changes to
// the durable store in the background.
type Workspaces struct {
	sync   *persistence.Synchronizer
	events session.Notifier

	mu        sync.Mutex
	spaces    map[string]*Workspace
	lastPrune time.Time
	now       func() time.Time

	background  pending
	generations pending
}

// pending counts running goroutines and lets callers wait for zero.
type pending struct {
	mu   sync.Mutex
	idle *sync.Cond
	n    int
}

func (p *pending) add() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *pending) done() {
	p.mu.Lock()
	p.n--
	if p.n == 0 && p.idle != nil {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}

func (p *pending) wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idle == nil {
		p.idle = sync.NewCond(&p.mu)
	}
	for p.n > 0 {
		p.idle.Wait()
	}
}

// NewWorkspaces creates the registry. events receives every store and draft
// event, tagged with the identity key; it may be nil.
func NewWorkspaces(synchronizer *persistence.Synchronizer, events session.Notifier) *Workspaces {
	return &Workspaces{
		sync:   synchronizer,
		events: events,
		spaces: make(map[string]*Workspace),
		now:    time.Now,
	}
}

// Get returns the identity's workspace. The first call for an authenticated
// identity rehydrates it from the durable store.
func (ws *Workspaces) Get(ctx context.Context, ident identity.Identity) *Workspace {
	key := ident.Key()
	ws.mu.Lock()
	now := ws.now()
	ws.pruneLocked(now)
	w, ok := ws.spaces[key]
	if !ok {
		w = ws.newWorkspace(ident)
		ws.spaces[key] = w
	}
	w.lastSeen = now
	ws.mu.Unlock()

	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	if !w.loaded {
		if ident.Authenticated() {
			w.Store.Replace(ws.sync.LoadAll(ctx, ident))
		}
		w.loaded = true
	}
	return w
}

// Reload replaces the workspace contents with what the durable store holds.
// It refuses while a response is still streaming.
func (ws *Workspaces) Reload(ctx context.Context, ident identity.Identity) (*Workspace, error) {
	w := ws.Get(ctx, ident)
	if !ident.Authenticated() {
		return w, nil
	}
	if n := w.Runs.InFlight(); n > 0 {
		return nil, fmt.Errorf("%d responses still in progress: %w", n, app_errors.ErrInvalidState)
	}
	ws.Wait()

	w.loadMu.Lock()
	defer w.loadMu.Unlock()
	w.Store.Replace(ws.sync.LoadAll(ctx, ident))
	w.loaded = true
	return w, nil
}

// pruneLocked drops anonymous workspaces nobody has touched for
// anonymousIdle. Workspaces with a response in flight are kept.
func (ws *Workspaces) pruneLocked(now time.Time) {
	if now.Sub(ws.lastPrune) < anonymousIdle/4 {
		return
	}
	for key, w := range ws.spaces {
		if w.ident.Authenticated() || now.Sub(w.lastSeen) < anonymousIdle || w.Runs.InFlight() > 0 {
			continue
		}
		delete(ws.spaces, key)
		slog.Debug("Evicted idle anonymous workspace", "owner", key, "sessions", w.Store.Len())
	}
	ws.lastPrune = now
}

// Go runs fn in the background with its own deadline. Wait blocks until
// every such call has returned.
func (ws *Workspaces) Go(fn func(ctx context.Context)) {
	ws.background.add()
	go func() {
		defer ws.background.done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until all background writes have finished.
func (ws *Workspaces) Wait() { ws.background.wait() }

// track marks a generation as running until the returned func is called.
func (ws *Workspaces) track() func() {
	ws.generations.add()
	return ws.generations.done
}

// Drain waits for running generations and then for the writes they
// scheduled. It gives up when ctx ends; writes still pending at that point
// may fail once storage is closed.
func (ws *Workspaces) Drain(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		ws.generations.wait()
		ws.background.wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight responses: %w", ctx.Err())
	}
}

// Status exposes the synchronizer's error and loading flags.
func (ws *Workspaces) Status() persistence.Status { return ws.sync.Status() }

func (ws *Workspaces) newWorkspace(ident identity.Identity) *Workspace {
	w := &Workspace{ident: ident}
	key := ident.Key()

	var notifier session.Notifier = ws.events
	if ident.Authenticated() {
		notifier = session.Notifiers{ws.persister(w), ws.events}
	}
	w.Store = session.NewStore(key, notifier)
	w.Runs = stream.NewAccumulator(w.Store, session.NotifierFunc(func(e session.Event) {
		if ws.events == nil {
			return
		}
		e.Owner = key
		ws.events.Notify(e)
	}))
	return w
}

// persister schedules the durable write matching each store event. The
// session is read back when the write runs, so it always carries the latest
// state.
func (ws *Workspaces) persister(w *Workspace) session.Notifier {
	return session.NotifierFunc(func(e session.Event) {
		id := e.SessionID
		switch e.Type {
		case session.EventSessionCreated, session.EventMessageAppended:
			ws.Go(func(ctx context.Context) {
				w.persistMu.Lock()
				defer w.persistMu.Unlock()
				if sess, err := w.Store.Get(id); err == nil {
					ws.sync.Save(ctx, w.ident, sess)
				}
			})
		case session.EventSessionRenamed:
			ws.Go(func(ctx context.Context) {
				w.persistMu.Lock()
				defer w.persistMu.Unlock()
				if sess, err := w.Store.Get(id); err == nil {
					ws.sync.Rename(ctx, w.ident, id, sess.Title, sess.UpdatedAt)
				}
			})
		case session.EventSessionDeleted:
			ws.Go(func(ctx context.Context) {
				w.persistMu.Lock()
				defer w.persistMu.Unlock()
				ws.sync.Delete(ctx, w.ident, id)
			})
		}
	})
}
