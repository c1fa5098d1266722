package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mockinterview/internal/interview"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/services"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

func (s *Server) handleStatus(c *gin.Context) {
	var status DaemonStatus
	if s.status != nil {
		status = s.status(c.Request.Context())
	} else {
		status.Running = true
		status.Live = s.registry.List()
		status.ActiveSessions = len(status.Live)
	}
	status.Subscribers = s.hub.Subscribers("")
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleTestNotification(c *gin.Context) {
	if s.notify == nil {
		c.JSON(http.StatusOK, NotificationResponse{Message: "notifications unavailable"})
		return
	}
	sent, message, err := s.notify(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NotificationResponse{Sent: sent, Message: message})
}

func (s *Server) handleStart(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "start session", "invalid request body", err))
		return
	}
	ctx := c.Request.Context()
	var (
		orch    *orchestrator.Orchestrator
		session *interview.Session
		err     error
	)
	if req.Tailored() {
		orch, session, err = s.registry.StartForJob(ctx, req.UserID, req.JobPostID, req.ApplicationID)
	} else {
		orch, session, err = s.registry.Start(ctx, sessions.StartRequest{
			UserID:        req.UserID,
			CandidateName: req.CandidateName,
			Role:          req.Role,
		})
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StartSessionResponse{Session: session, Snapshot: orch.Snapshot()})
}

func (s *Server) handleList(c *gin.Context) {
	filter := sessionstore.Filter{UserID: strings.TrimSpace(c.Query("user"))}
	for _, value := range c.QueryArray("status") {
		status, ok := interview.ParseStatus(value)
		if !ok {
			s.writeError(c, services.Wrap(services.ErrValidation, "api", "list sessions", "unknown status "+value, nil))
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(c, services.Wrap(services.ErrValidation, "api", "list sessions", "invalid limit "+raw, err))
			return
		}
		filter.Limit = limit
	}
	stored, err := s.store.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if stored == nil {
		stored = []*interview.Session{}
	}
	c.JSON(http.StatusOK, SessionListResponse{Sessions: stored, Running: s.registry.List()})
}

func (s *Server) handleGet(c *gin.Context) {
	session, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: session})
}

func (s *Server) handleState(c *gin.Context) {
	orch, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SnapshotResponse{Snapshot: orch.Snapshot()})
}

func (s *Server) handleNotes(c *gin.Context) {
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, services.Wrap(services.ErrValidation, "api", "notes", "invalid request body", err))
		return
	}
	s.command(func(ctx context.Context, o *orchestrator.Orchestrator, _ *gin.Context) error {
		return o.SetNotes(ctx, req.Notes)
	})(c)
}

// command runs a candidate command against a running session and answers
// with the resulting snapshot.
func (s *Server) command(fn func(ctx context.Context, o *orchestrator.Orchestrator, c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, err := s.registry.Get(c.Param("id"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		if err := fn(c.Request.Context(), orch, c); err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, SnapshotResponse{Snapshot: orch.Snapshot()})
	}
}

func (s *Server) handleEvents(c *gin.Context) {
	sessionID := c.Param("id")
	orch, err := s.registry.Get(sessionID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	initial := Message{
		Type:      "snapshot",
		SessionID: sessionID,
		Data:      orch.Snapshot(),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.hub.Serve(c.Writer, c.Request, sessionID, initial); err != nil {
		s.writeError(c, err)
	}
}
