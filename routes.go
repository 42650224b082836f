package main

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventplanner-web/internal/api"
	"eventplanner-web/internal/dashboard"
)

// SetupRoutes registers the web front-end on r.
func SetupRoutes(r *gin.Engine, app *App, tmpl *template.Template) {
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public Routes
	auth := r.Group("/auth")
	{
		auth.GET("", redirectTo(api.LoginRoute))
		auth.GET("/:mode", app.ShowAuth)
		auth.POST("/login", app.Login)
		auth.POST("/register", app.Register)
		auth.POST("/logout", app.Logout)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(app.RequireSession())
	{
		// DASHBOARD
		authorized.GET("/", redirectTo("/dashboard"))
		authorized.GET("/dashboard", app.Dashboard(dashboard.TabAll))
		authorized.GET("/dashboard/organized", app.Dashboard(dashboard.TabOrganized))
		authorized.GET("/dashboard/invited", app.Dashboard(dashboard.TabInvited))

		// EVENTS
		authorized.GET("/events/create", app.ShowCreateEvent)
		authorized.POST("/events/create", app.CreateEvent)
		authorized.GET("/events/search", app.SearchEvents)
		authorized.GET("/events/:id", app.ShowEvent)
		authorized.POST("/events/:id/delete", app.DeleteEvent)

		// INVITATIONS
		authorized.POST("/events/:id/invite", app.InviteUser)

		// ATTENDANCE
		authorized.POST("/events/:id/attendance", app.SetAttendance)
	}

	r.NoRoute(redirectTo("/dashboard"))
}

func redirectTo(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, location)
	}
}
