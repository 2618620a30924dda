package middlewares

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"sahayakseva/backend/metrics"
	"sahayakseva/backend/session"
)

const (
	SignInPath    = "/signin"
	DashboardPath = "/dashboard"
	SessionCookie = "session"
)

// Requirement is the session state a route needs.
type Requirement int

const (
	Authenticated Requirement = iota
	Unauthenticated
)

func (r Requirement) String() string {
	if r == Unauthenticated {
		return "unauthenticated"
	}
	return "authenticated"
}

type Outcome int

const (
	Loading Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "loading"
	}
}

type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide maps a session state to exactly one of loading, render or redirect.
func Decide(req Requirement, st session.State) Decision {
	switch {
	case st == session.Pending:
		return Decision{Outcome: Loading}
	case req == Authenticated && st == session.SignedIn:
		return Decision{Outcome: Render}
	case req == Authenticated:
		return Decision{Outcome: Redirect, Location: SignInPath}
	case st == session.SignedIn:
		return Decision{Outcome: Redirect, Location: DashboardPath}
	default:
		return Decision{Outcome: Render}
	}
}

// Gate follows a session source and recomputes its decision on every emission.
type Gate struct {
	req Requirement

	mu      sync.Mutex
	state   session.State
	changed chan struct{}
	unsub   func()
}

func NewGate(src session.Source, token string, req Requirement) *Gate {
	g := &Gate{req: req, state: session.Pending, changed: make(chan struct{})}
	g.unsub = src.ObserveSessionState(token, g.update)
	return g
}

func (g *Gate) update(st session.State) {
	g.mu.Lock()
	g.state = st
	close(g.changed)
	g.changed = make(chan struct{})
	g.mu.Unlock()
}

func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Decide(g.req, g.state)
}

// Wait blocks until the session resolves or ctx ends, then returns the current decision.
func (g *Gate) Wait(ctx context.Context) Decision {
	for {
		g.mu.Lock()
		st, ch := g.state, g.changed
		g.mu.Unlock()
		if st.Resolved() {
			return Decide(g.req, st)
		}
		select {
		case <-ctx.Done():
			return g.Decision()
		case <-ch:
		}
	}
}

func (g *Gate) Close() { g.unsub() }

// SessionSource streams state for a token and resolves it to an account.
type SessionSource interface {
	session.Source
	Identify(token string) (string, error)
}

// Token reads the bearer token, falling back to the session cookie.
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return v
	}
	return ""
}

// Guard admits a request only when its session matches req. While the session
// is pending it answers with a loading placeholder; on a mismatch it redirects.
func Guard(src SessionSource, req Requirement, wait time.Duration, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c)
		gate := NewGate(src, token, req)
		defer gate.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		d := gate.Wait(ctx)
		cancel()

		if d.Outcome == Render && req == Authenticated {
			accountID, err := src.Identify(token)
			if err != nil {
				d = Decision{Outcome: Redirect, Location: SignInPath}
			} else {
				c.Set("account_id", accountID)
				c.Set("session_token", token)
			}
		}
		if m != nil {
			m.GuardDecisions.WithLabelValues(req.String(), d.Outcome.String()).Inc()
		}

		switch d.Outcome {
		case Loading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		case Redirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		default:
			c.Next()
		}
	}
}
