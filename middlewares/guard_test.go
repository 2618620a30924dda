package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayakseva/backend/metrics"
	"sahayakseva/backend/session"
)

type fakeSource struct {
	obs      *session.Observer
	accounts map[string]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{obs: session.NewObserver(), accounts: map[string]string{}}
}

func (f *fakeSource) ObserveSessionState(_ string, fn func(session.State)) func() {
	return f.obs.Subscribe(fn)
}

func (f *fakeSource) Identify(token string) (string, error) {
	if id, ok := f.accounts[token]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}

func TestDecide(t *testing.T) {
	cases := []struct {
		req  Requirement
		st   session.State
		want Decision
	}{
		{Authenticated, session.Pending, Decision{Outcome: Loading}},
		{Authenticated, session.SignedIn, Decision{Outcome: Render}},
		{Authenticated, session.SignedOut, Decision{Outcome: Redirect, Location: SignInPath}},
		{Unauthenticated, session.Pending, Decision{Outcome: Loading}},
		{Unauthenticated, session.SignedIn, Decision{Outcome: Redirect, Location: DashboardPath}},
		{Unauthenticated, session.SignedOut, Decision{Outcome: Render}},
	}
	for _, tc := range cases {
		t.Run(tc.req.String()+"/"+tc.st.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.req, tc.st))
		})
	}
}

func TestGateReevaluates(t *testing.T) {
	src := newFakeSource()
	g := NewGate(src, "tok", Authenticated)
	defer g.Close()

	assert.Equal(t, Loading, g.Decision().Outcome)
	src.obs.Publish(session.SignedIn)
	assert.Equal(t, Render, g.Decision().Outcome)
	src.obs.Publish(session.SignedOut)
	assert.Equal(t, Decision{Outcome: Redirect, Location: SignInPath}, g.Decision())
}

func TestGateWaitsForResolution(t *testing.T) {
	src := newFakeSource()
	g := NewGate(src, "tok", Unauthenticated)
	defer g.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		src.obs.Publish(session.SignedOut)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Equal(t, Render, g.Wait(ctx).Outcome)
}

func TestGateCloseUnsubscribes(t *testing.T) {
	src := newFakeSource()
	g := NewGate(src, "tok", Authenticated)
	assert.Equal(t, 1, src.obs.Len())
	g.Close()
	g.Close()
	assert.Equal(t, 0, src.obs.Len())
}

func guardedRouter(src SessionSource, req Requirement, m *metrics.Metrics) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rendered := 0
	r.GET("/page", Guard(src, req, 30*time.Millisecond, m), func(c *gin.Context) {
		rendered++
		c.JSON(http.StatusOK, gin.H{"account_id": c.GetString("account_id")})
	})
	return r, &rendered
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardRequireAuthenticated(t *testing.T) {
	src := newFakeSource()
	src.accounts["tok"] = "acct-1"
	m := metrics.New(prometheus.NewRegistry())
	r, rendered := guardedRouter(src, Authenticated, m)

	t.Run("pending shows loading placeholder", func(t *testing.T) {
		w := doGet(r, "tok")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"loading"}`, w.Body.String())
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Equal(t, 0, *rendered)
	})

	t.Run("signed in renders child", func(t *testing.T) {
		src.obs.Publish(session.SignedIn)
		w := doGet(r, "tok")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"account_id":"acct-1"}`, w.Body.String())
		assert.Equal(t, 1, *rendered)
	})

	t.Run("signed out redirects without rendering", func(t *testing.T) {
		src.obs.Publish(session.SignedOut)
		w := doGet(r, "tok")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, SignInPath, w.Header().Get("Location"))
		assert.Equal(t, 1, *rendered)
	})

	t.Run("signed in but unknown token redirects", func(t *testing.T) {
		src.obs.Publish(session.SignedIn)
		w := doGet(r, "stale")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, 1, *rendered)
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GuardDecisions.WithLabelValues("authenticated", "loading")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GuardDecisions.WithLabelValues("authenticated", "render")))
	assert.Equal(t, 0, src.obs.Len(), "guard must release its subscription")
}

func TestGuardRequireUnauthenticated(t *testing.T) {
	src := newFakeSource()
	r, rendered := guardedRouter(src, Unauthenticated, nil)

	src.obs.Publish(session.SignedIn)
	w := doGet(r, "tok")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))
	assert.Equal(t, 0, *rendered)

	src.obs.Publish(session.SignedOut)
	w = doGet(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *rendered)
}

func TestToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", Token(c))

	c.Request.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", Token(c))
}
