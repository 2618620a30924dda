package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sahayakseva/backend/chat"
	"sahayakseva/backend/config"
	"sahayakseva/backend/identity"
	"sahayakseva/backend/metrics"
	"sahayakseva/backend/middlewares"
	"sahayakseva/backend/schemes"
	"sahayakseva/backend/store"
)

// Deps is everything a page handler may touch.
type Deps struct {
	Cfg      config.Config
	Auth     identity.Provider
	Profiles store.KV
	Schemes  schemes.Service
	Chats    chat.Store
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func (d *Deps) profileStore(accountID string) *store.ProfileStore {
	return store.NewProfileStore(store.NewScoped(d.Profiles, accountID))
}

func setSession(c *gin.Context, s *identity.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, s.Token, maxAge, "/", "", false, true)
}

func clearSession(c *gin.Context) {
	c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", false, true)
}

func identityStatus(err error) int {
	switch identity.CodeOf(err) {
	case identity.CodeUserNotFound:
		return http.StatusNotFound
	case identity.CodeEmailInUse:
		return http.StatusConflict
	case identity.CodeInvalidEmail, identity.CodeWeakPassword:
		return http.StatusBadRequest
	case identity.CodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"page": "not-found", "error": "page not found", "path": c.Request.URL.Path})
	}
}
