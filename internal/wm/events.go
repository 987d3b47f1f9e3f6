package wm

// EventKind names a state change.
type EventKind string

const (
	EventOpened      EventKind = "opened"
	EventClosed      EventKind = "closed"
	EventMinimized   EventKind = "minimized"
	EventRestored    EventKind = "restored"
	EventMaximized   EventKind = "maximized"
	EventUnmaximized EventKind = "unmaximized"
	EventFocused     EventKind = "focused"
	EventMoved       EventKind = "moved"
	EventResized     EventKind = "resized"
	EventGesture     EventKind = "gesture"
	EventMounted     EventKind = "mounted"
	EventViewport    EventKind = "viewport"
)

// Event is published after every state change, in commit order.
type Event struct {
	Kind     EventKind `json:"kind"`
	WindowID string    `json:"window_id,omitempty"`
	Snapshot Snapshot  `json:"snapshot"`
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every future event and returns a function that
// removes it. fn runs outside the manager lock and may call back into the
// manager; events raised from inside fn are delivered after fn returns.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	m.nextSubID++
	id := m.nextSubID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// emitLocked queues an event. Caller holds m.mu.
func (m *Manager) emitLocked(kind EventKind, id string) {
	m.seq++
	m.pending = append(m.pending, Event{Kind: kind, WindowID: id, Snapshot: m.snapshotLocked()})
}

// unlock releases m.mu and delivers queued events. Only one goroutine drains at
// a time so subscribers observe events in sequence order.
func (m *Manager) unlock() {
	if m.draining || len(m.pending) == 0 {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		subs := make([]subscriber, len(m.subs))
		copy(subs, m.subs)
		m.mu.Unlock()

		for _, ev := range batch {
			for _, s := range subs {
				s.fn(ev)
			}
		}

		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}
