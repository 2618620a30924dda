package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sahayakseva/backend/form"
	"sahayakseva/backend/models"
	"sahayakseva/backend/store"
)

const signUpPath = "/signup"

// loadProfile returns the signed-in account's profile. When the record is
// missing or unreadable the session is ended and the client is sent back to
// sign-up; the caller must stop when ok is false.
func loadProfile(c *gin.Context, d *Deps) (p *models.UserProfile, ok bool) {
	accountID := c.GetString("account_id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := d.profileStore(accountID).Load(ctx)
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, store.ErrNotFound):
		d.Metrics.ProfileResets.Inc()
		d.Log.Warn("profile missing or unreadable, signing out", zap.String("account_id", accountID), zap.Error(err))
		if err := d.Auth.SignOut(ctx, c.GetString("session_token")); err != nil {
			d.Log.Warn("sign out failed", zap.Error(err))
		}
		clearSession(c)
		c.Redirect(http.StatusFound, signUpPath)
		return nil, false
	default:
		d.Log.Error("load profile", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return nil, false
	}
}

func GetProfile(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := loadProfile(c, d)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": p})
	}
}

// UpdateProfile replays the submitted fields over the stored profile and saves
// the result through the same form checks used at sign-up.
func UpdateProfile(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProfileFormRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		existing, ok := loadProfile(c, d)
		if !ok {
			return
		}
		e := form.New(existing)
		if err := e.SetAll(req.Fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		accountID := c.GetString("account_id")
		var saved models.UserProfile
		err := e.Submit(func(p models.UserProfile) error {
			p.Password = ""
			p.FirebaseID = accountID
			saved = p
			return d.profileStore(accountID).Save(c.Request.Context(), p)
		})
		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, validationBody(verr))
		case err != nil:
			d.Log.Error("save profile", zap.String("account_id", accountID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile. Please try again."})
		default:
			c.JSON(http.StatusOK, gin.H{"profile": saved, "message": "Profile updated"})
		}
	}
}

// Logout clears the stored profile before ending the session.
func Logout(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetString("account_id")
		ctx := c.Request.Context()
		if err := d.profileStore(accountID).Clear(ctx); err != nil {
			d.Log.Error("clear profile", zap.String("account_id", accountID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		if err := d.Auth.SignOut(ctx, c.GetString("session_token")); err != nil {
			d.Log.Error("sign out", zap.String("account_id", accountID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		clearSession(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully!", "redirect": signUpPath})
	}
}
