package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/orchestrator"
	"github.com/gistahq/gista/pkg/storage"
)

// Server is the API server for the gista system.
type Server struct {
	config   Config
	sessions *orchestrator.SessionStore
	storer   storage.Driver
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server. The storer is injected to allow
// sharing with the CLI when both run in one process.
func NewServer(config Config, sessions *orchestrator.SessionStore, storer storage.Driver, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Context strings (headers, params) outlive the handler: the
		// namespace is retained inside stored conversations and session
		// keys, so they must be copied out of fasthttp's reusable buffers.
		Immutable: true,
	})

	s := &Server{
		config:   config,
		sessions: sessions,
		storer:   storer,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/conversations", s.handleOpen)
	app.Get("/conversations", s.handleList)
	app.Get("/conversations/:id/history", s.handleHistory)
	app.Post("/conversations/:id/messages", s.handleMessage)
	app.Delete("/conversations/:id", s.handleDelete)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server, saving live sessions first.
func (s *Server) Shutdown() error {
	s.sessions.Flush(context.Background())
	return s.app.Shutdown()
}
