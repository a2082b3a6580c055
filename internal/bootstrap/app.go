package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tubbz-alt/arxiv-auth/internal/cache"
	"github.com/Tubbz-alt/arxiv-auth/internal/config"
	"github.com/Tubbz-alt/arxiv-auth/internal/metrics"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
	"github.com/Tubbz-alt/arxiv-auth/internal/services"
	"github.com/Tubbz-alt/arxiv-auth/internal/store"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder metrics.Recorder
	SessionCache    cache.Cache[models.Session]

	// Services
	SessionIssuer *services.SessionIssuer
	GrantEngine   *services.GrantEngine
	LoginService  *services.LoginService

	// HTTP
	Router *gin.Engine
	Server *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	app.initializeBusinessLayer()
	app.initializeHTTPLayer()

	app.startWithGracefulShutdown()
	return nil
}

// initializeInfrastructure sets up the database, metrics, and session cache
func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = store.New(app.Config.DatabaseDriver, app.Config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)

	app.SessionCache, err = initializeSessionCache(app.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize session cache: %w", err)
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	app.SessionIssuer = services.NewSessionIssuer(app.DB, app.Config, app.MetricsRecorder)
	app.GrantEngine = services.NewGrantEngine(app.DB, app.Config, app.SessionIssuer, app.MetricsRecorder)
	app.LoginService = services.NewLoginService(app.DB, app.SessionIssuer, app.MetricsRecorder)
}

// initializeHTTPLayer sets up the router and HTTP server
func (app *Application) initializeHTTPLayer() {
	app.Router = setupRouter(app)
	app.Server = createHTTPServer(app.Config, app.Router)
}
