package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/auth"
)

func (s *Server) listStudents(c *gin.Context) {
	students, err := s.Users.ListStudents(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, students)
}

// getStudent serves a single profile: callers read their own, admins read
// anyone's.
func (s *Server) getStudent(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	id := c.Param("id")
	if auth.DecideOwnership(ident, id) != auth.Allow {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "not authorized"})
		return
	}

	u, err := s.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
