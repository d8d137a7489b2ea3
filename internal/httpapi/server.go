// Package httpapi maps the HTTP surface onto the core services. Handlers
// bind typed request structs and return value errors; respond.go translates
// those values to status codes.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/metrics"
	"rollcall/internal/notification"
	"rollcall/internal/session"
	"rollcall/internal/user"
)

// HealthChecker reports the liveness of a backing store.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// NotificationStore is the inbox surface the handlers need.
type NotificationStore interface {
	ListByRecipient(ctx context.Context, recipientID string, limit int, unreadOnly bool) ([]notification.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	FindByID(ctx context.Context, id string) (*notification.Notification, error)
	SetRead(ctx context.Context, id string, isRead bool) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// Deps wires the server's collaborators.
type Deps struct {
	Cfg           config.App
	Log           *zap.Logger
	Codec         *auth.Codec
	Users         *user.Service
	Sessions      *session.Registry
	Attendance    *attendance.Engine
	Notifications NotificationStore
	Publisher     *notification.Publisher
	DBHealth      HealthChecker
	RedisHealth   HealthChecker
}

// Server holds handler state.
type Server struct {
	Deps
}

// NewRouter builds the gin engine with all middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	s := &Server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewRateLimiter(d.Cfg.RateLimitPerMin).GinMiddleware())
	r.Use(auth.Middleware(d.Codec))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", s.health)

	authGroup := r.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", auth.RequireAuth(), s.me)

	sessions := r.Group("/sessions", auth.RequireAuth())
	sessions.POST("", s.createSession)
	sessions.GET("", s.listSessions)
	sessions.GET("/:id", s.getSession)
	sessions.DELETE("/:id", s.deleteSession)

	att := r.Group("/attendance", auth.RequireAuth())
	att.POST("", s.markAttendance)
	att.GET("", s.listAttendance)

	students := r.Group("/students", auth.RequireAuth())
	students.GET("", auth.RequireRole(auth.RoleAdmin), s.listStudents)
	students.GET("/:id", s.getStudent)

	notifications := r.Group("/notifications", auth.RequireAuth())
	notifications.GET("", s.listNotifications)
	notifications.PATCH("/:id", s.updateNotification)
	notifications.POST("/mark-all-read", s.markAllNotificationsRead)
	notifications.DELETE("/:id", s.deleteNotification)

	return r
}

func (s *Server) health(c *gin.Context) {
	dbHealthy := s.DBHealth != nil && s.DBHealth.Healthy(c.Request.Context())
	redisHealthy := s.RedisHealth != nil && s.RedisHealth.Healthy(c.Request.Context())
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
}

// corsMiddleware handles browser preflight and credentialed requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
