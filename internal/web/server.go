package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hquan/babytrack/internal/application/tracker"
	"github.com/hquan/babytrack/internal/util"
)

// Server is the HTTP surface the browser UI talks to.
type Server struct {
	app    *tracker.Orchestrator
	router *gin.Engine
}

// NewServer creates the server and registers all routes.
func NewServer(app *tracker.Orchestrator, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		app:    app,
		router: router,
	}

	api := router.Group("/api")
	{
		api.GET("/entries", s.handleListEntries)
		api.POST("/entries", s.handleAppendEntry)
		api.PATCH("/entries/:id", s.handleUpdateAmount)
		api.DELETE("/entries/:id", s.handleRemoveEntry)

		api.GET("/summary", s.handleSummary)

		api.GET("/schedule", s.handleGetSchedule)
		api.POST("/schedule", s.handleSetSchedule)
		api.POST("/schedule/adjust", s.handleAdjustSchedule)
		api.POST("/schedule/dismiss", s.handleDismissAlert)
		api.DELETE("/schedule", s.handleClearSchedule)

		api.GET("/timers", s.handleListTimers)
		api.POST("/timers/:type/start", s.handleStartTimer)
		api.POST("/timers/:type/stop", s.handleStopTimer)

		api.GET("/insights", s.handleGetInsight)
		api.POST("/insights", s.handleRefreshInsight)
		api.POST("/parse", s.handleParse)

		api.GET("/profile", s.handleGetProfile)
		api.PUT("/profile", s.handleSetProfile)
		api.PUT("/permission", s.handleSetPermission)
	}

	return s
}

// Router exposes the gin engine, mainly for handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfof("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
