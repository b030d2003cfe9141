package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/accounts-backend/config"
	"github.com/ikkim/accounts-backend/internal/app/controller"
	"github.com/ikkim/accounts-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	sessionMiddleware *middleware.SessionMiddleware
	templates         *template.Template
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	sessionMiddleware *middleware.SessionMiddleware,
	templates *template.Template,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		sessionMiddleware: sessionMiddleware,
		templates:         templates,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.SetHTMLTemplate(r.templates)

	router.GET("/health", controller.Health)

	pages := router.Group("/")
	pages.Use(r.sessionMiddleware.Load())
	{
		pages.GET("/", r.authController.Index)

		pages.GET("/register", r.authController.ShowRegister)
		pages.POST("/register", r.authController.Register)
		pages.GET("/login", r.authController.ShowLogin)
		pages.POST("/login", r.authController.Login)

		pages.GET("/forgot-password", r.authController.ShowForgotPassword)
		pages.POST("/forgot-password", r.authController.ForgotPassword)
		pages.GET("/reset-password/:token", r.authController.ShowResetPassword)
		pages.POST("/reset-password/:token", r.authController.ResetPassword)

		guarded := pages.Group("/")
		guarded.Use(r.sessionMiddleware.RequireSession())
		{
			guarded.GET("/dashboard", r.authController.Dashboard)
			guarded.GET("/logout", r.authController.Logout)
			guarded.POST("/logout", r.authController.Logout)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed, wildcard := false, false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" {
				wildcard = true
			} else if origin == allowedOrigin {
				allowed = true
			}
		}

		switch {
		case origin == "":
		case allowed:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		case wildcard:
			// the session cookie is only shared with listed origins
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
