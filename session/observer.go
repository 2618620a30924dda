// Package session broadcasts sign-in state to independent subscribers.
package session

import "sync"

// State is the tri-valued session signal.
type State int

const (
	Pending State = iota
	SignedIn
	SignedOut
)

func (s State) String() string {
	switch s {
	case SignedIn:
		return "signed-in"
	case SignedOut:
		return "signed-out"
	default:
		return "pending"
	}
}

// Resolved reports whether the provider has decided the state.
func (s State) Resolved() bool { return s != Pending }

// Source is anything that can stream session state for a token.
type Source interface {
	ObserveSessionState(token string, fn func(State)) (unsubscribe func())
}

// Observer holds the current state and fans it out to subscribers.
// The zero value is not usable; call NewObserver.
type Observer struct {
	mu      sync.Mutex
	state   State
	version uint64 // bumped by every Publish
	next    uint64
	subs    map[uint64]*subscription
	closed  bool
}

// subscription serializes calls to one subscriber and drops any delivery
// older than one it already received.
type subscription struct {
	mu        sync.Mutex
	fn        func(State)
	seen      uint64
	delivered bool
}

func (s *subscription) deliver(st State, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delivered && version <= s.seen {
		return
	}
	s.seen, s.delivered = version, true
	s.fn(st)
}

func NewObserver() *Observer {
	return &Observer{state: Pending, subs: map[uint64]*subscription{}}
}

// Subscribe registers fn and immediately calls it with the current state,
// unless a newer publish reaches fn first. Calls to fn never overlap, so fn
// must not publish to the same observer.
// The returned func may be called any number of times, including after Close.
func (o *Observer) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	if o.closed {
		st := o.state
		o.mu.Unlock()
		fn(st)
		return func() {}
	}
	id := o.next
	o.next++
	sub := &subscription{fn: fn}
	o.subs[id] = sub
	st, version := o.state, o.version
	o.mu.Unlock()

	sub.deliver(st, version)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Publish sets the state and notifies every subscriber registered at call time.
func (o *Observer) Publish(st State) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.version++
	o.state = st
	version := o.version
	subs := make([]*subscription, 0, len(o.subs))
	for _, sub := range o.subs {
		subs = append(subs, sub)
	}
	o.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(st, version)
	}
}

func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Len returns the number of live subscribers.
func (o *Observer) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Close drops all subscribers. Later publishes are ignored.
func (o *Observer) Close() {
	o.mu.Lock()
	o.closed = true
	o.subs = map[uint64]*subscription{}
	o.mu.Unlock()
}
