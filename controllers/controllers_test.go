package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sahayakseva/backend/chat"
	"sahayakseva/backend/identity"
	"sahayakseva/backend/metrics"
	"sahayakseva/backend/models"
	"sahayakseva/backend/schemes"
	"sahayakseva/backend/store"
	"sahayakseva/backend/utils"
)

type downService struct{ *schemes.Mock }

var errDown = errors.New("upstream unavailable")

func (downService) ListEligibleSchemes(context.Context) ([]models.Scheme, error) { return nil, errDown }
func (downService) SendComplaintMessage(context.Context, string) (string, error) { return "", errDown }

func testDeps(t *testing.T, svc schemes.Service) *Deps {
	t.Helper()
	d := &Deps{
		Profiles: store.NewMemoryKV(),
		Schemes:  svc,
		Chats:    chat.NewMemoryStore(),
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Log:      zap.NewNop(),
	}
	require.NoError(t, d.profileStore("acct-1").Save(context.Background(), models.UserProfile{
		FullName: "Asha Devi", Gender: models.GenderFemale, Age: 34, State: "bihar", AadhaarNumber: "123456789012",
	}))
	return d
}

func serve(h gin.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	signedIn := func(c *gin.Context) { c.Set("account_id", "acct-1"); c.Next() }
	r.Handle(method, path, signedIn, h)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDashboardFetchFailure(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)
	d := testDeps(t, downService{mock})

	w := serve(Dashboard(d), http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load eligible schemes"}`, w.Body.String())
}

func TestFailedSendEchoesText(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)
	d := testDeps(t, downService{mock})

	w := serve(SendComplaint(d), http.MethodPost, "/complaint", `{"message":"pension stopped"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Failed to send message","message":"pension stopped"}`, w.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(d.Metrics.ChatSends.WithLabelValues("complaint", "error")))

	history, err := d.Chats.Load(context.Background(), "acct-1", topicComplaint)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendRejectsBadBody(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)
	d := testDeps(t, mock)

	w := serve(SendComplaint(d), http.MethodPost, "/complaint", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportSchemes(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)
	d := testDeps(t, mock)

	w := serve(ExportSchemes(d), http.MethodGet, "/dashboard/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, utils.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schemes-all.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestUnknownSchemeFallsBackToGeneral(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)
	d := testDeps(t, mock)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scheme-chat/:schemeId", func(c *gin.Context) { c.Set("account_id", "acct-1"); c.Next() }, SchemeChat(d))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scheme-chat/nope", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), noSchemeNotice)
}

func TestIdentityStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, identityStatus(errors.New("boom")))
}

func TestNotFound(t *testing.T) {
	w := serve(NotFound(), http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"page":"not-found"`)
}

type tokenlessAuth struct{ identity.Provider }

func (tokenlessAuth) SignIn(context.Context, string, string) (*identity.Session, error) {
	return nil, errors.New("sign token: key is invalid")
}

type readOnlyKV struct{ *store.MemoryKV }

func (readOnlyKV) Set(context.Context, string, string) error { return errors.New("read-only replica") }

func TestUnclassifiedFailuresCountAsErrors(t *testing.T) {
	mock, err := schemes.NewMock(0)
	require.NoError(t, err)

	t.Run("sign in", func(t *testing.T) {
		d := testDeps(t, mock)
		d.Auth = tokenlessAuth{}
		w := serve(SignIn(d), http.MethodPost, "/signin", `{"email":"asha@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(d.Metrics.SignIns.WithLabelValues("error")))
		assert.Equal(t, float64(0), testutil.ToFloat64(d.Metrics.SignIns.WithLabelValues("ok")))
	})

	t.Run("sign up", func(t *testing.T) {
		d := testDeps(t, mock)
		auth := identity.NewLocal(identity.NewMemoryAccounts(), "test-secret", time.Hour, zap.NewNop())
		require.NoError(t, auth.Start(context.Background()))
		d.Auth = auth
		d.Profiles = readOnlyKV{store.NewMemoryKV()}

		body := `{"fields":{"fullName":"Asha Devi","email":"asha@example.com","password":"secret1","gender":"female",` +
			`"age":"34","maritalStatus":"married","familyIncome":"120000","caste":"obc",` +
			`"aadhaarNumber":"123456789012","state":"bihar","district":"Patna"}}`
		w := serve(SignUp(d), http.MethodPost, "/signup", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(d.Metrics.SignUps.WithLabelValues("error")))
		assert.Equal(t, float64(0), testutil.ToFloat64(d.Metrics.SignUps.WithLabelValues("ok")))
	})
}
