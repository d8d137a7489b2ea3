package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	u, err := s.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		s.fail(c, err)
		return
	}

	token, _, err := s.Codec.Issue(u.ID, u.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setTokenCookie(c, token)

	ok(c, http.StatusCreated, u)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	u, err := s.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	token, _, err := s.Codec.Issue(u.ID, u.Role)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setTokenCookie(c, token)

	s.Log.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", u.Role))
	ok(c, http.StatusOK, u)
}

func (s *Server) logout(c *gin.Context) {
	s.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	ident, _ := auth.IdentityFrom(c)
	u, err := s.Users.GetByID(c.Request.Context(), ident.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// Cookie lifetime matches the token lifetime; HttpOnly + SameSite=Strict
// always, Secure in production.
func (s *Server) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.TokenCookie, token, int(s.Codec.TTL()/time.Second), "/", "", s.Cfg.Production(), true)
}

func (s *Server) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.TokenCookie, "", -1, "/", "", s.Cfg.Production(), true)
}
