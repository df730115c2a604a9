package restserver

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/amrlab/amrserver/internal/database"
	"github.com/amrlab/amrserver/internal/log"
	"github.com/amrlab/amrserver/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var (
	//go:embed all:assets
	content embed.FS
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	serverConfig   config.ServerData
	Server         http.Server
	DB             *database.Client
	FS             *fs.FS
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sc config.ServerData, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		serverConfig:   sc,
		DB:             db,
		logger:         logger,
	}

	if db == nil {
		return nil, fmt.Errorf("REST server requires a database client")
	}

	// If a listen address was not provided, listen on all interfaces
	if ctrl.serverConfig.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.serverConfig.ListenAddr = "0.0.0.0"
	}

	if ctrl.serverConfig.Port == 0 {
		logger.Info("server.port not provided; defaulting to 8090")
		ctrl.serverConfig.Port = 8090
	}

	// Create handlers
	ctrl.handlers = NewHandlers(ctrl)

	// Set up embedded filesystem for assets
	assetsFS, _ := fs.Sub(fs.FS(content), "assets")
	ctrl.FS = &assetsFS

	// Set up router
	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.serverConfig.ListenAddr, ctrl.serverConfig.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(log.HTTPMiddleware)

	// Surveillance endpoints
	router.HandleFunc("/api/trends", c.handlers.GetTrends).Methods(http.MethodGet)
	router.HandleFunc("/api/forecast", c.handlers.GetForecast).Methods(http.MethodGet)
	router.HandleFunc("/api/heatmap", c.handlers.GetHeatmap).Methods(http.MethodGet)
	router.HandleFunc("/api/priorities", c.handlers.GetPriorities).Methods(http.MethodGet)
	router.HandleFunc("/api/catalog", c.handlers.GetCatalog).Methods(http.MethodGet)
	router.HandleFunc("/api/observations", c.handlers.PostObservations).Methods(http.MethodPost)

	// Stewardship endpoints
	router.HandleFunc("/api/stewardship/simulate", c.handlers.PostStewardshipSimulate).Methods(http.MethodPost)
	router.HandleFunc("/api/stewardship/costbenefit", c.handlers.PostStewardshipCostBenefit).Methods(http.MethodPost)
	router.HandleFunc("/api/stewardship/compare", c.handlers.PostStewardshipCompare).Methods(http.MethodPost)

	// Transmission network endpoint
	router.HandleFunc("/api/network", c.handlers.PostNetwork).Methods(http.MethodPost)

	// EUCAST breakpoint reference
	router.HandleFunc("/api/eucast", c.handlers.GetEucast).Methods(http.MethodGet)

	// Quiz endpoints
	router.HandleFunc("/api/quiz", c.handlers.GetQuiz).Methods(http.MethodGet)
	router.HandleFunc("/api/quiz/grade", c.handlers.PostQuizGrade).Methods(http.MethodPost)

	// Static file serving (dashboard)
	router.PathPrefix("/").Handler(http.FileServer(http.FS(*c.FS)))

	return router
}
