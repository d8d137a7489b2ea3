package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/apperr"
	"rollcall/internal/attendance"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps a service error to its status. Redemption errors and application
// errors are expected branches; anything else is an infrastructure fault,
// logged in full and returned as a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidCode),
		errors.Is(err, attendance.ErrSessionExpired),
		errors.Is(err, attendance.ErrAlreadyMarked):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if appErr := apperr.From(err); appErr != nil {
		c.JSON(appErr.Code, gin.H{"success": false, "message": appErr.Message})
		return
	}
	s.Log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
