package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sahayakseva/backend/form"
	"sahayakseva/backend/identity"
	"sahayakseva/backend/metrics"
	"sahayakseva/backend/middlewares"
	"sahayakseva/backend/models"
	"sahayakseva/backend/store"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "home", "links": gin.H{"signin": "/signin", "signup": "/signup"}})
	}
}

func SignInPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "signin", "signup": "/signup"})
	}
}

func SignIn(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		sess, err := d.Auth.SignIn(ctx, req.Email, req.Password)
		d.Metrics.SignIns.WithLabelValues(metrics.Result(err, string(identity.CodeOf(err)))).Inc()
		if err != nil {
			d.Log.Info("sign in failed", zap.String("code", string(identity.CodeOf(err))), zap.Error(err))
			body := gin.H{"error": identity.Message(err), "code": identity.CodeOf(err)}
			if identity.CodeOf(err) == identity.CodeUserNotFound {
				body["redirect"] = "/signup"
			}
			c.JSON(identityStatus(err), body)
			return
		}
		setSession(c, sess)
		c.JSON(http.StatusOK, models.SessionResponse{
			Token: sess.Token, AccountID: sess.AccountID, Redirect: middlewares.DashboardPath,
			Message: "Successfully signed in!",
		})
	}
}

func SignUpPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"page": "signup",
			"steps": []gin.H{
				{"step": form.StepPersonal, "required": []string{"fullName", "gender", "age", "maritalStatus"}},
				{"step": form.StepFinancial, "required": []string{"familyIncome", "caste", "state"}},
				{"step": form.StepDocuments, "required": []string{"aadhaarNumber"}},
			},
			"states": models.States,
		})
	}
}

func validationBody(err *form.ValidationError) gin.H {
	return gin.H{"error": err.Message, "fields": err.Fields, "step": err.Step}
}

// SignUpStep checks the fields of every step up to :step and reports the next step.
func SignUpStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		step, err := strconv.Atoi(c.Param("step"))
		if err != nil || step < form.StepPersonal || step > form.StepDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
			return
		}
		var req models.StepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		e := form.New(nil)
		if err := e.SetAll(req.Fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for e.Step() <= step {
			err := e.Advance()
			if errors.Is(err, form.ErrLastStep) {
				break
			}
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, validationBody(verr))
				return
			}
		}
		resp := gin.H{"step": e.Step()}
		if upload := e.Draft().AadhaarUpload; upload != "" {
			resp["aadhaarUpload"] = upload
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SignUp submits the whole form, creates the account and stores the profile.
func SignUp(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProfileFormRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		e := form.New(nil)
		if err := e.SetAll(req.Fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var sess *identity.Session
		err := e.Submit(func(p models.UserProfile) error {
			if err := form.CheckSignup(p); err != nil {
				return err
			}
			s, err := register(ctx, d, p.Email, p.Password)
			if err != nil {
				return err
			}
			p.FirebaseID = s.AccountID
			if err := d.profileStore(s.AccountID).Save(ctx, p); err != nil {
				return err
			}
			sess = s
			return nil
		})

		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, validationBody(verr))
			return
		case identity.CodeOf(err) != "":
			d.Metrics.SignUps.WithLabelValues(metrics.Result(err, string(identity.CodeOf(err)))).Inc()
			body := gin.H{"error": identity.Message(err), "code": identity.CodeOf(err)}
			if identity.CodeOf(err) == identity.CodeEmailInUse {
				body["redirect"] = middlewares.SignInPath
			}
			c.JSON(identityStatus(err), body)
			return
		case err != nil:
			d.Metrics.SignUps.WithLabelValues(metrics.Result(err, "")).Inc()
			d.Log.Error("sign up failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile. Please try again."})
			return
		}

		d.Metrics.SignUps.WithLabelValues(metrics.Result(nil, "")).Inc()
		setSession(c, sess)
		c.JSON(http.StatusCreated, models.SessionResponse{
			Token: sess.Token, AccountID: sess.AccountID, Redirect: middlewares.DashboardPath,
			Message: "Registration successful!",
		})
	}
}

// register creates the account. An existing account whose stored profile is
// gone (cleared as unreadable) may register again with its own password.
func register(ctx context.Context, d *Deps, email, password string) (*identity.Session, error) {
	s, err := d.Auth.CreateAccount(ctx, email, password)
	if identity.CodeOf(err) != identity.CodeEmailInUse {
		return s, err
	}
	existing, signInErr := d.Auth.SignIn(ctx, email, password)
	if signInErr != nil {
		return nil, err
	}
	if _, loadErr := d.profileStore(existing.AccountID).Load(ctx); !errors.Is(loadErr, store.ErrNotFound) {
		_ = d.Auth.SignOut(ctx, existing.Token)
		return nil, err
	}
	d.Log.Info("re-registering account without profile", zap.String("account_id", existing.AccountID))
	return existing, nil
}
