package broadcast

import (
	"context"
	"sync"
)

// Listener reacts to logout signals on behalf of one tab. It tracks the
// last-seen signal value so a replayed signal never causes a duplicate
// teardown, and it skips tabs already sitting on an auth page.
type Listener struct {
	source Subscriber

	// OnLogout performs the tab-local teardown: clear the session cache,
	// drop persisted identity state, navigate to signin.
	OnLogout func(sig Signal)

	// SkipCurrent reports whether the tab's current location should not
	// react (e.g. it is already on an auth page).
	SkipCurrent func() bool

	mu       sync.Mutex
	lastSeen string
}

// Run consumes signals until ctx is done or the subscription closes.
// Each distinct signal value triggers OnLogout at most once.
func (l *Listener) Run(ctx context.Context) {
	unsub, ch := l.source.Subscribe()
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			l.handle(sig)
		}
	}
}

func (l *Listener) handle(sig Signal) {
	l.mu.Lock()
	if sig.Value == "" || sig.Value == l.lastSeen {
		l.mu.Unlock()
		return
	}
	l.lastSeen = sig.Value
	l.mu.Unlock()

	if l.SkipCurrent != nil && l.SkipCurrent() {
		return
	}
	if l.OnLogout != nil {
		l.OnLogout(sig)
	}
}

// NewListener wires a Listener to a signal source.
func NewListener(source Subscriber, onLogout func(Signal)) *Listener {
	return &Listener{source: source, OnLogout: onLogout}
}
