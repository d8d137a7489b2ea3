package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/auth"
	"rollcall/internal/metrics"
	"rollcall/internal/notification"
)

type createSessionRequest struct {
	Subject   string    `json:"subject" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	ExpiresAt time.Time `json:"expiresAt" binding:"required"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ident, _ := auth.IdentityFrom(c)
	created, err := s.Sessions.Create(c.Request.Context(), req.Subject, req.Date, req.ExpiresAt, ident.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	metrics.SessionsCreated.Inc()

	// Best-effort fan-out; a publish failure never fails the creation.
	s.Publisher.SessionCreated(c.Request.Context(), notification.SessionCreatedEvent{
		SessionID:   created.ID,
		Subject:     created.Subject,
		ScheduledAt: created.ScheduledAt,
	})

	ok(c, http.StatusCreated, created)
}

func (s *Server) listSessions(c *gin.Context) {
	sessions, err := s.Sessions.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, sessions)
}

func (s *Server) getSession(c *gin.Context) {
	found, err := s.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, found)
}

func (s *Server) deleteSession(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	if err := s.Sessions.Delete(c.Request.Context(), c.Param("id"), ident); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "session deleted"})
}
