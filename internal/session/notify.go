package session

import (
	"log/slog"
	"sync"

	"flow-chat/backend/internal/model"
)

type EventType string

const (
	EventSessionCreated  EventType = "session_created"
	EventMessageAppended EventType = "message_appended"
	EventSessionRenamed  EventType = "session_renamed"
	EventSessionDeleted  EventType = "session_deleted"
	EventActiveChanged   EventType = "active_changed"
	EventDraftUpdated    EventType = "draft_updated"
	EventDraftCleared    EventType = "draft_cleared"
	EventSessionsLoaded  EventType = "sessions_loaded"
)

// Event describes one state change. Owner is the workspace key the change
// belongs to and is never sent to clients.
type Event struct {
	Type      EventType      `json:"type"`
	Owner     string         `json:"-"`
	SessionID string         `json:"session_id,omitempty"`
	Title     string         `json:"title,omitempty"`
	Message   *model.Message `json:"message,omitempty"`
	Draft     string         `json:"draft,omitempty"`
}

// Notifier receives state changes. Implementations must not block and must
// not call back into the store synchronously while holding their own locks.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Notifiers fans one event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(e)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Broadcaster delivers events to channel subscribers of the same owner.
// A subscriber that falls behind loses events instead of stalling the sender.
type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]subscriber
}

type subscriber struct {
	owner string
	ch    chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]subscriber)}
}

// Subscribe registers a listener for owner's events. The returned cancel
// function unregisters it and closes the channel.
func (b *Broadcaster) Subscribe(owner string, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = subscriber{owner: owner, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Notify(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.owner != e.Owner {
			continue
		}
		select {
		case s.ch <- e:
		default:
			slog.Debug("Dropping event for slow subscriber", "owner", e.Owner, "type", e.Type)
		}
	}
}

// Subscribers reports how many listeners are registered.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
