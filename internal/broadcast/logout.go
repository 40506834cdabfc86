package broadcast

// Package broadcast models the cross-tab logout protocol as an explicit
// pub/sub channel: logout publishes a fresh opaque signal, every other
// tab's subscription observes it and tears down its local auth state.
// Modeling this as a channel (rather than ambient storage events) keeps
// the protocol testable on its own.

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Signal is the opaque logout marker. Its only property is that every
// logout produces a fresh value, so observers can de-duplicate replays.
type Signal struct {
	// Value changes on every publish.
	Value string `json:"value"`
	// UserID scopes the signal to the sessions of one user.
	UserID string `json:"user_id"`
}

// NewSignal creates a Signal with a fresh opaque value for the user.
func NewSignal(userID string) Signal {
	return Signal{Value: uuid.NewString(), UserID: userID}
}

// Publisher emits logout signals.
type Publisher interface {
	Publish(ctx context.Context, sig Signal) error
}

// Subscriber exposes logout signals. The returned function detaches the
// subscription and closes the channel.
type Subscriber interface {
	Subscribe() (unsub func(), ch <-chan Signal)
}

// Broadcaster is the full pub/sub channel used by the logout protocol.
type Broadcaster interface {
	Publisher
	Subscriber
}

// LocalBroadcaster is the in-process Broadcaster implementation. It
// fans each published signal out to every subscriber without blocking
// the publisher: a subscriber that has not drained its buffer keeps the
// newest signal, which is sufficient because any observed signal
// triggers the same teardown.
type LocalBroadcaster struct {
	mu   sync.Mutex
	subs map[chan Signal]struct{}
}

// NewLocalBroadcaster constructs an empty LocalBroadcaster.
func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{subs: make(map[chan Signal]struct{})}
}

// Publish delivers sig to all current subscribers. It never blocks and
// never fails locally; the error return satisfies Publisher for
// implementations with real transport.
func (b *LocalBroadcaster) Publish(_ context.Context, sig Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- sig:
		default:
			// Replace a stale undrained signal with the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- sig:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a new observer.
func (b *LocalBroadcaster) Subscribe() (func(), <-chan Signal) {
	ch := make(chan Signal, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; !ok {
			return
		}
		delete(b.subs, ch)
		drainAndClose(ch)
	}
	return unsub, ch
}

// drainAndClose removes any buffered signal before closing the channel
// so receivers observe a closed channel immediately.
func drainAndClose(ch chan Signal) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}

var _ Broadcaster = (*LocalBroadcaster)(nil)
