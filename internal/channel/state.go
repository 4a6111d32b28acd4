package channel

import (
	"sync"
	"time"
)

// State is the lifecycle state of the messaging session
type State string

const (
	StateDisconnected State = "disconnected"
	StatePairing      State = "pairing"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

// Transition is published to subscribers whenever the state changes
type Transition struct {
	From State
	To   State
	At   time.Time
}

// StateTracker holds the current session state and fans transitions out
// to subscribers. Slow subscribers miss transitions instead of blocking Set.
type StateTracker struct {
	mu          sync.RWMutex
	state       State
	since       time.Time
	subscribers map[int]chan Transition
	nextID      int
}

// NewStateTracker creates a tracker starting in StateDisconnected
func NewStateTracker() *StateTracker {
	return &StateTracker{
		state:       StateDisconnected,
		since:       time.Now(),
		subscribers: make(map[int]chan Transition),
	}
}

// Current returns the current state
func (t *StateTracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Since returns when the current state was entered
func (t *StateTracker) Since() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.since
}

// Set moves the tracker to state. It reports whether the state changed.
func (t *StateTracker) Set(state State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == state {
		return false
	}
	tr := Transition{From: t.state, To: state, At: time.Now()}
	t.state = state
	t.since = tr.At

	for _, ch := range t.subscribers {
		select {
		case ch <- tr:
		default:
		}
	}
	return true
}

// Subscribe returns a channel receiving future transitions and a function
// that unsubscribes and closes it.
func (t *StateTracker) Subscribe(buffer int) (<-chan Transition, func()) {
	ch := make(chan Transition, buffer)

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subscribers[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, id)
			t.mu.Unlock()
			close(ch)
		})
	}
}
