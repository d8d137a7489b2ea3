package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/metrics"
)

type markAttendanceRequest struct {
	QRCodeData string `json:"qrCodeData" binding:"required"`
}

func (s *Server) markAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ident, _ := auth.IdentityFrom(c)
	rec, err := s.Attendance.Redeem(c.Request.Context(), ident.ID, req.QRCodeData)
	if err != nil {
		metrics.Redemptions.WithLabelValues(redemptionOutcome(err)).Inc()
		s.fail(c, err)
		return
	}
	metrics.Redemptions.WithLabelValues("success").Inc()

	ok(c, http.StatusCreated, rec)
}

// listAttendance returns records filtered by the query params. Students only
// ever see their own records; the studentId filter is forced to the caller's
// id unless the caller is an admin.
func (s *Server) listAttendance(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	sessionID := c.Query("sessionId")
	studentID := c.Query("studentId")
	if !ident.IsAdmin() {
		studentID = ident.ID
	}

	records, err := s.Attendance.List(c.Request.Context(), sessionID, studentID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}

func redemptionOutcome(err error) string {
	switch {
	case errors.Is(err, attendance.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, attendance.ErrSessionExpired):
		return "expired"
	case errors.Is(err, attendance.ErrAlreadyMarked):
		return "already_marked"
	default:
		return "error"
	}
}
