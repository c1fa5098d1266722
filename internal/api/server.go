package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/metrics"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/services"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

// Registry is the running-session surface the API drives.
type Registry interface {
	Start(ctx context.Context, req sessions.StartRequest) (*orchestrator.Orchestrator, *interview.Session, error)
	StartForJob(ctx context.Context, userID, jobPostID, applicationID string) (*orchestrator.Orchestrator, *interview.Session, error)
	Get(sessionID string) (*orchestrator.Orchestrator, error)
	List() []sessions.Summary
}

// SessionReader reads stored sessions.
type SessionReader interface {
	Get(ctx context.Context, id string) (*interview.Session, error)
	List(ctx context.Context, filter sessionstore.Filter) ([]*interview.Session, error)
}

// StatusFunc reports daemon status.
type StatusFunc func(ctx context.Context) DaemonStatus

// NotifyFunc sends a test notification, reporting whether it was delivered
// and an operator-facing message when it was not.
type NotifyFunc func(ctx context.Context) (bool, string, error)

// Options wires a Server. Registry and Store are required.
type Options struct {
	Registry   Registry
	Store      SessionReader
	Hub        *Hub
	Metrics    *metrics.Recorder
	Status     StatusFunc
	TestNotify NotifyFunc
	Token      string
	Logger     *slog.Logger
}

// Server routes HTTP requests to the session registry.
type Server struct {
	registry Registry
	store    SessionReader
	hub      *Hub
	status   StatusFunc
	notify   NotifyFunc
	logger   *slog.Logger
	engine   *gin.Engine
}

// NewServer builds the gin engine and registers every route.
func NewServer(opts Options) (*Server, error) {
	if opts.Registry == nil || opts.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "registry and store are required", nil)
	}
	s := &Server{
		registry: opts.Registry,
		store:    opts.Store,
		hub:      opts.Hub,
		status:   opts.Status,
		notify:   opts.TestNotify,
		logger:   logging.NewComponentLogger(opts.Logger, "api-server"),
	}
	if s.hub == nil {
		s.hub = NewHub(HubConfig{}, opts.Logger)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID())
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := engine.Group("/api", authMiddleware(opts.Token))
	api.GET("/status", s.handleStatus)
	api.POST("/notifications/test", s.handleTestNotification)
	api.POST("/sessions", s.handleStart)
	api.GET("/sessions", s.handleList)
	api.GET("/sessions/:id", s.handleGet)
	api.GET("/sessions/:id/state", s.handleState)
	api.GET("/sessions/:id/events", s.handleEvents)
	api.POST("/sessions/:id/recording", s.command(func(ctx context.Context, o *orchestrator.Orchestrator, _ *gin.Context) error {
		return o.ToggleRecording(ctx)
	}))
	api.PUT("/sessions/:id/notes", s.handleNotes)
	api.POST("/sessions/:id/next", s.command(func(ctx context.Context, o *orchestrator.Orchestrator, _ *gin.Context) error {
		return o.Next(ctx)
	}))
	api.POST("/sessions/:id/complete", s.command(func(ctx context.Context, o *orchestrator.Orchestrator, _ *gin.Context) error {
		return o.Complete(ctx)
	}))
	api.POST("/sessions/:id/exit", s.command(func(ctx context.Context, o *orchestrator.Orchestrator, _ *gin.Context) error {
		return o.Exit(ctx)
	}))

	s.engine = engine
	return s, nil
}

// Handler exposes the engine for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the event hub the registry should publish into.
func (s *Server) Hub() *Hub {
	return s.hub
}

// requestID tags the request context with a correlation id, honouring an
// inbound X-Request-ID.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(c.Request.Context(), s.logger), "request failed", "api_request_failed",
			logging.String("route", c.FullPath()),
			logging.Error(err),
		)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
