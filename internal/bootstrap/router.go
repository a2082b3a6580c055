package bootstrap

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tubbz-alt/arxiv-auth/internal/handlers"
	"github.com/Tubbz-alt/arxiv-auth/internal/middleware"
	"github.com/Tubbz-alt/arxiv-auth/internal/version"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(app *Application) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	setupSessionMiddleware(r, app)

	tokenHandler := handlers.NewTokenHandler(app.GrantEngine)
	authorizeHandler := handlers.NewAuthorizeHandler(app.GrantEngine)
	authHandler := handlers.NewAuthHandler(app.LoginService)

	oauth := r.Group("/oauth")
	{
		oauth.POST("/token", tokenHandler.Token)
		oauth.GET("/authorize", authorizeHandler.Authorize)
		oauth.POST("/authorize", authorizeHandler.Authorize)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
	}

	r.GET("/healthz", createHealthCheckHandler(app))

	if app.Config.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	log.Printf("[Bootstrap] %s %s listening on %s", version.App, version.Version, app.Config.ServerAddr)
	return r
}

// setupSessionMiddleware configures cookie sessions and session resolution
func setupSessionMiddleware(r *gin.Engine, app *Application) {
	sessionStore := cookie.NewStore([]byte(app.Config.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(app.Config.TokenExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("arxiv_session", sessionStore))
	r.Use(middleware.SessionLoader(app.DB, app.SessionCache, app.Config.SessionCacheTTL))
}

// createHealthCheckHandler builds the health endpoint handler
func createHealthCheckHandler(app *Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.DB.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		if err := app.SessionCache.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version.Version,
		})
	}
}
