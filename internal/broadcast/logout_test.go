package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewLocalBroadcaster()

	unsubA, chA := b.Subscribe()
	defer unsubA()
	unsubB, chB := b.Subscribe()
	defer unsubB()

	sig := NewSignal("u1")
	require.NoError(t, b.Publish(context.Background(), sig))

	for _, ch := range []<-chan Signal{chA, chB} {
		select {
		case got := <-ch:
			assert.Equal(t, sig, got)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for signal")
		}
	}
}

func TestLocalBroadcasterKeepsNewestSignal(t *testing.T) {
	b := NewLocalBroadcaster()
	unsub, ch := b.Subscribe()
	defer unsub()

	first := NewSignal("u1")
	second := NewSignal("u1")
	require.NoError(t, b.Publish(context.Background(), first))
	require.NoError(t, b.Publish(context.Background(), second))

	// The subscriber never drained; it must observe the newest signal.
	select {
	case got := <-ch:
		assert.Equal(t, second.Value, got.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal")
	}
}

func TestLocalBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := NewLocalBroadcaster()
	unsub, ch := b.Subscribe()

	unsub()
	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is safe.
	unsub()

	// Publishing after unsubscribe does not panic or deliver.
	require.NoError(t, b.Publish(context.Background(), NewSignal("u1")))
}

func TestNewSignalValuesAreFresh(t *testing.T) {
	a := NewSignal("u1")
	b := NewSignal("u1")
	assert.NotEqual(t, a.Value, b.Value)
	assert.Equal(t, "u1", a.UserID)
}

func TestListenerFiresOncePerSignal(t *testing.T) {
	b := NewLocalBroadcaster()

	var mu sync.Mutex
	var fired []string
	l := NewListener(b, func(sig Signal) {
		mu.Lock()
		fired = append(fired, sig.Value)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()

	sig := NewSignal("u1")
	// Replayed signal with the same value must not double-fire.
	l.handle(sig)
	l.handle(sig)
	next := NewSignal("u1")
	l.handle(next)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{sig.Value, next.Value}, fired)
}

func TestListenerSkipsAuthPages(t *testing.T) {
	b := NewLocalBroadcaster()

	fired := 0
	l := NewListener(b, func(Signal) { fired++ })
	l.SkipCurrent = func() bool { return true }

	l.handle(NewSignal("u1"))
	assert.Zero(t, fired, "a tab already on an auth page must not navigate")
}

func TestListenerDeliversThroughBroadcaster(t *testing.T) {
	b := NewLocalBroadcaster()

	got := make(chan Signal, 1)
	l := NewListener(b, func(sig Signal) { got <- sig })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	// Give the listener a moment to subscribe before publishing.
	time.Sleep(10 * time.Millisecond)
	sig := NewSignal("u2")
	require.NoError(t, b.Publish(ctx, sig))

	select {
	case observed := <-got:
		assert.Equal(t, sig, observed)
	case <-time.After(time.Second):
		t.Fatal("listener never observed the logout signal")
	}
}
