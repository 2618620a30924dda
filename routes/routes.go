package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sahayakseva/backend/controllers"
	"sahayakseva/backend/middlewares"
)

func Register(r *gin.Engine, d *controllers.Deps) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	guest := r.Group("/")
	guest.Use(middlewares.Guard(d.Auth, middlewares.Unauthenticated, d.Cfg.GuardWait, d.Metrics))
	{
		guest.GET("", controllers.Home())
		guest.GET("signin", controllers.SignInPage())
		guest.POST("signin", controllers.SignIn(d))
		guest.GET("signup", controllers.SignUpPage())
		guest.POST("signup/steps/:step", controllers.SignUpStep())
		guest.POST("signup", controllers.SignUp(d))
	}

	priv := r.Group("/")
	priv.Use(middlewares.Guard(d.Auth, middlewares.Authenticated, d.Cfg.GuardWait, d.Metrics))
	{
		priv.GET("dashboard", controllers.Dashboard(d))
		priv.GET("dashboard/export", controllers.ExportSchemes(d))
		priv.GET("profile", controllers.GetProfile(d))
		priv.PUT("profile", controllers.UpdateProfile(d))
		priv.POST("profile/logout", controllers.Logout(d))
		priv.GET("scheme-chat", controllers.SchemeChat(d))
		priv.GET("scheme-chat/:schemeId", controllers.SchemeChat(d))
		priv.POST("scheme-chat", controllers.SendSchemeMessage(d))
		priv.POST("scheme-chat/:schemeId", controllers.SendSchemeMessage(d))
		priv.GET("complaint", controllers.Complaint(d))
		priv.POST("complaint", controllers.SendComplaint(d))
	}

	r.NoRoute(controllers.NotFound())
}
