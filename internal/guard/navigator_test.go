package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
	"github.com/Hissaria17/alcrm-sub001/internal/session"
)

func fixedPath(p string) func() string {
	return func() string { return p }
}

func freshIdentity(role domainauth.Role, clock session.Clock) domainauth.Identity {
	return domainauth.Identity{UserID: "u1", Role: role, FetchedAt: clock.Now()}
}

func newGuard(cache *session.Cache, clock session.Clock, refresh RefreshFunc) *NavigationGuard {
	return NewNavigationGuard(NavigationGuardOptions{
		Cache:   cache,
		Decider: access.NewDecider(routes.Default()),
		Refresh: refresh,
		Clock:   clock,
		Timeout: 500 * time.Millisecond,
	})
}

func TestCheckSkipsWhenNoIdentity(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	g := newGuard(cache, clock, nil)

	dir := g.Check(context.Background(), fixedPath("/admin/dashboard"))
	assert.Equal(t, ActionStay, dir.Action)
}

func TestCheckSkipsPublicPaths(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	g := newGuard(cache, clock, nil)

	for _, p := range []string{"/", "/about", "/jobs/42", "/signin"} {
		dir := g.Check(context.Background(), fixedPath(p))
		assert.Equal(t, ActionStay, dir.Action, "path=%q", p)
	}
}

func TestCheckAllowsMatchingRole(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	g := newGuard(cache, clock, nil)

	dir := g.Check(context.Background(), fixedPath("/dashboard/profile"))
	assert.Equal(t, ActionStay, dir.Action)
}

func TestCheckDeniedUsesReplace(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	g := newGuard(cache, clock, nil)

	dir := g.Check(context.Background(), fixedPath("/admin/dashboard"))
	assert.Equal(t, ActionReplace, dir.Action)
	assert.Equal(t, "/dashboard", dir.Target)
}

func TestCheckRefreshesStaleIdentity(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute) // past the freshness window

	var calls atomic.Int32
	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		calls.Add(1)
		return domainauth.Identity{UserID: "u1", Role: domainauth.RoleUser}, nil
	}
	g := newGuard(cache, clock, refresh)

	dir := g.Check(context.Background(), fixedPath("/dashboard"))
	assert.Equal(t, ActionStay, dir.Action)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, cache.IsFresh(clock.Now()), "refresh must re-stamp the cached identity")
}

func TestCheckRefreshFailureFailsClosed(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute)

	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("provider unreachable")
	}
	g := newGuard(cache, clock, refresh)

	dir := g.Check(context.Background(), fixedPath("/dashboard"))
	assert.Equal(t, ActionReplace, dir.Action)
	assert.Equal(t, "/signin", dir.Target)

	_, ok := cache.Get()
	assert.False(t, ok, "failed refresh clears the cache")
}

func TestCheckRefreshDeduplicated(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		calls.Add(1)
		<-release
		return domainauth.Identity{UserID: "u1", Role: domainauth.RoleUser}, nil
	}
	g := newGuard(cache, clock, refresh)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Check(context.Background(), fixedPath("/dashboard"))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent navigations share one fetch")
}

func TestCheckRechecksPathAtResolutionTime(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute)

	// The tab starts the check on an admin path, then navigates to a
	// public one while the refresh is in flight. The guard must judge
	// the final location and not emit a stale redirect.
	var mu sync.Mutex
	path := "/admin/dashboard"
	currentPath := func() string {
		mu.Lock()
		defer mu.Unlock()
		return path
	}
	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		mu.Lock()
		path = "/jobs/42"
		mu.Unlock()
		return domainauth.Identity{UserID: "u1", Role: domainauth.RoleUser}, nil
	}
	g := newGuard(cache, clock, refresh)

	dir := g.Check(context.Background(), currentPath)
	assert.Equal(t, ActionStay, dir.Action)
}

func TestCheckHungRefreshTimesOut(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute)

	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		<-ctx.Done()
		return domainauth.Identity{}, ctx.Err()
	}
	g := newGuard(cache, clock, refresh)

	start := time.Now()
	dir := g.Check(context.Background(), fixedPath("/dashboard"))
	assert.Less(t, time.Since(start), 3*time.Second, "a hung fetch must not wedge navigation")
	assert.Equal(t, ActionReplace, dir.Action)
	assert.Equal(t, "/signin", dir.Target)
}

func TestCheckCanceledNavigationStillSettlesCache(t *testing.T) {
	clock := session.NewFixedClock(time.Now())
	cache := session.NewCache()
	cache.Set(freshIdentity(domainauth.RoleUser, clock))
	clock.Advance(10 * time.Minute)

	settled := make(chan struct{})
	release := make(chan struct{})
	refresh := func(ctx context.Context) (domainauth.Identity, error) {
		<-release
		defer close(settled)
		return domainauth.Identity{UserID: "u1", Role: domainauth.RoleUser}, nil
	}
	g := newGuard(cache, clock, refresh)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
		close(release)
	}()

	dir := g.Check(ctx, fixedPath("/dashboard"))
	assert.Equal(t, ActionStay, dir.Action, "an abandoned navigation redirects nowhere")
	assert.Empty(t, dir.Target)

	select {
	case <-settled:
	case <-time.After(time.Second):
		t.Fatal("refresh did not complete after the navigation was canceled")
	}
	// The late result still lands in the cache for the next check.
	assert.Eventually(t, func() bool { return cache.IsFresh(clock.Now()) },
		time.Second, 10*time.Millisecond)
}
