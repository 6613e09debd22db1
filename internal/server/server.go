// Package server exposes the orchestrator and file stager over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coderelay-dev/coderelay/internal/config"
	"github.com/coderelay-dev/coderelay/internal/execute"
	"github.com/coderelay-dev/coderelay/internal/files"
	"github.com/coderelay-dev/coderelay/internal/log"
	"github.com/coderelay-dev/coderelay/internal/session"
)

// Server wires the session store, workspace allocator, orchestrator, and
// file stager behind the HTTP API.
type Server struct {
	cfg        config.Config
	logger     *log.Logger
	store      session.Store
	workspaces *session.Workspaces
	stager     *files.Stager
	runner     *execute.Runner
	httpServer *http.Server
}

// New builds a Server around the given store. The store is injected so
// tests and alternate backends construct their own.
func New(cfg config.Config, store session.Store, logger *log.Logger) (*Server, error) {
	workspaces, err := session.NewWorkspaces(cfg.WorkspaceRoot)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		workspaces: workspaces,
		stager:     files.NewStager(),
		runner: &execute.Runner{
			Launcher:   &execute.CLILauncher{Bin: cfg.ClaudeBin},
			Store:      store,
			Workspaces: workspaces,
			Guard:      session.NewGuard(),
			Logger:     logger,
			Timeout:    time.Duration(cfg.ExecTimeoutSeconds) * time.Second,
		},
	}

	s.httpServer = &http.Server{
		Addr:    cfg.Listen,
		Handler: s.router(),
	}
	return s, nil
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/claude", s.handleClaude)

	v1 := router.Group("/v1")
	v1.POST("/files", s.handleUpload)
	v1.GET("/files/:id", s.handleFileInfo)
	v1.GET("/files/:id/content", s.handleFileContent)
	v1.DELETE("/files/:id", s.handleFileDelete)

	return router
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts serving and blocks until the listener closes.
func (s *Server) Run() error {
	_ = s.logger.Emit(log.Event{Event: log.EventServerStarted, Addr: s.cfg.Listen})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the session store.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	_ = s.logger.Emit(log.Event{Event: log.EventServerStopped})
	return s.store.Close()
}
