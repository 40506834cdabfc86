package guard

// Package guard implements the client-side navigation guard. It is the
// advisory layer that keeps protected content from flashing while the
// authoritative server-side guard would still be in flight; it never
// substitutes for that boundary, since anything running client-side can
// be bypassed.

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
	"github.com/Hissaria17/alcrm-sub001/internal/domain/routes"
	"github.com/Hissaria17/alcrm-sub001/internal/session"
)

// Action tells the navigation shell what to do after a check.
type Action string

const (
	// ActionStay lets the navigation proceed.
	ActionStay Action = "stay"
	// ActionReplace redirects with a history-replacing navigation, so
	// the denied page never poisons back-button history.
	ActionReplace Action = "replace"
)

// Directive is the outcome of a navigation check.
type Directive struct {
	Action Action
	Target string
}

func stay() Directive { return Directive{Action: ActionStay} }

func replace(target string) Directive {
	return Directive{Action: ActionReplace, Target: target}
}

// RefreshFunc fetches a fresh identity from the provider. Returning an
// error means the identity could not be confirmed; the guard treats
// that as unauthenticated.
type RefreshFunc func(ctx context.Context) (domainauth.Identity, error)

// DefaultRefreshTimeout bounds how long a navigation check waits for an
// in-flight identity refresh before failing closed.
const DefaultRefreshTimeout = 5 * time.Second

// NavigationGuard checks client-side route changes against the cached
// identity. Stale identities are refreshed through RefreshFunc, with
// concurrent navigations collapsing onto one fetch via singleflight.
type NavigationGuard struct {
	cache   *session.Cache
	decider access.Decider
	refresh RefreshFunc
	clock   session.Clock
	timeout time.Duration
	group   singleflight.Group
}

// NavigationGuardOptions groups dependencies for NewNavigationGuard.
type NavigationGuardOptions struct {
	Cache   *session.Cache
	Decider access.Decider
	Refresh RefreshFunc
	// Clock defaults to the system clock.
	Clock session.Clock
	// Timeout defaults to DefaultRefreshTimeout.
	Timeout time.Duration
}

// NewNavigationGuard constructs a NavigationGuard.
func NewNavigationGuard(opts NavigationGuardOptions) *NavigationGuard {
	clock := opts.Clock
	if clock == nil {
		clock = session.RealClock{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &NavigationGuard{
		cache:   opts.Cache,
		decider: opts.Decider,
		refresh: opts.Refresh,
		clock:   clock,
		timeout: timeout,
	}
}

// Check evaluates the current navigation. currentPath is read again
// after any asynchronous refresh settles, so a navigation completed
// mid-refresh is judged against where the tab actually is, never
// against where it was when the fetch began.
func (g *NavigationGuard) Check(ctx context.Context, currentPath func() string) Directive {
	// Unauthenticated tabs are handled by whichever page-level guard
	// they land on.
	identity, ok := g.cache.Get()
	if !ok {
		return stay()
	}

	path := currentPath()
	if g.decider.Table().Classify(path) == routes.CategoryPublic {
		return stay()
	}

	if !g.cache.IsFresh(g.clock.Now()) {
		if g.refresh == nil {
			g.cache.Clear()
			return replace(g.decider.Table().SigninPath)
		}
		switch g.awaitRefresh(ctx) {
		case refreshAbandoned:
			// The navigation itself is gone. The detached refresh keeps
			// running and settles the cache for the next check; wiping
			// it here could clobber a result that just landed.
			return stay()
		case refreshFailed:
			// Identity could not be confirmed: fail closed.
			g.cache.Clear()
			return replace(g.decider.Table().SigninPath)
		case refreshSettled:
		}
		identity, ok = g.cache.Get()
		if !ok {
			return replace(g.decider.Table().SigninPath)
		}
		// Re-check the path the tab is on now, not the one captured
		// before the refresh.
		path = currentPath()
		if g.decider.Table().Classify(path) == routes.CategoryPublic {
			return stay()
		}
	}

	dec := g.decider.Decide(identity.Role, path)
	if dec.Allowed {
		return stay()
	}
	return replace(dec.RedirectTo)
}

// refreshOutcome distinguishes how a wait on the shared refresh ended.
type refreshOutcome int

const (
	// refreshSettled means the refresh completed and cached an identity.
	refreshSettled refreshOutcome = iota
	// refreshFailed means the refresh errored or the wait timed out.
	refreshFailed
	// refreshAbandoned means the caller's context was canceled mid-wait.
	refreshAbandoned
)

// awaitRefresh runs (or joins) the shared identity refresh and reports
// how the wait ended. The refresh itself is detached from the caller's
// context: navigating away does not abort it, and its result still
// lands in the cache. The wait is bounded by the guard's timeout so a
// hung fetch can never wedge navigation.
func (g *NavigationGuard) awaitRefresh(ctx context.Context) refreshOutcome {
	ch := g.group.DoChan("identity", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		identity, err := g.refresh(rctx)
		if err != nil {
			g.cache.Clear()
			return nil, err
		}
		identity.FetchedAt = g.clock.Now()
		g.cache.Set(identity)
		return nil, nil
	})

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return refreshFailed
		}
		return refreshSettled
	case <-ctx.Done():
		return refreshAbandoned
	case <-timer.C:
		return refreshFailed
	}
}
