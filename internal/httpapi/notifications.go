package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rollcall/internal/auth"
)

func (s *Server) listNotifications(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	unreadOnly := c.Query("unreadOnly") == "true"

	items, err := s.Notifications.ListByRecipient(c.Request.Context(), ident.ID, limit, unreadOnly)
	if err != nil {
		s.fail(c, err)
		return
	}
	unread, err := s.Notifications.CountUnread(c.Request.Context(), ident.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "unreadCount": unread})
}

type updateNotificationRequest struct {
	IsRead *bool `json:"isRead" binding:"required"`
}

func (s *Server) updateNotification(c *gin.Context) {
	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ident, _ := auth.IdentityFrom(c)
	id := c.Param("id")
	n, err := s.Notifications.FindByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "notification not found"})
		return
	}
	if n.RecipientID != ident.ID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not authorized"})
		return
	}

	if err := s.Notifications.SetRead(c.Request.Context(), id, *req.IsRead); err != nil {
		s.fail(c, err)
		return
	}
	n.IsRead = *req.IsRead
	ok(c, http.StatusOK, n)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	count, err := s.Notifications.MarkAllRead(c.Request.Context(), ident.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all notifications marked as read", "count": count})
}

// deleteNotification removes an inbox entry: the recipient may delete their
// own, admins may delete any.
func (s *Server) deleteNotification(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	id := c.Param("id")
	n, err := s.Notifications.FindByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "notification not found"})
		return
	}
	if auth.DecideOwnership(ident, n.RecipientID) != auth.Allow {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not authorized"})
		return
	}

	if err := s.Notifications.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification deleted"})
}
