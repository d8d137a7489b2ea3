package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpapi"
	"rollcall/internal/logging"
	"rollcall/internal/notification"
	"rollcall/internal/queue"
	"rollcall/internal/session"
	"rollcall/internal/store"
	"rollcall/internal/user"
)

func main() {
	cfg := config.Load()

	logs, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logs.Closer()
	log := logs.Base

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func run(cfg config.App, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	codec := auth.NewCodec(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	hasher := auth.NewHasher(cfg.BcryptCost)

	users := user.NewService(user.NewRepository(db.Client), hasher)
	sessions := session.NewRegistry(session.NewRepository(db.Client))
	engine := attendance.NewEngine(sessions, attendance.NewRepository(db.Client))
	notifications := notification.NewRepository(db.Client)
	publisher := notification.NewPublisher(q, log)

	// With the in-memory queue there is no separate worker process, so the
	// fan-out consumer runs inline.
	if cfg.QueueBackend == "memory" {
		deliverer := notification.NewDeliverer(users, notifications, log)
		worker := notification.NewWorker(q, deliverer, log)
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Error("inline notification worker", zap.Error(err))
			}
		}()
	}

	r := httpapi.NewRouter(httpapi.Deps{
		Cfg:           cfg,
		Log:           log,
		Codec:         codec,
		Users:         users,
		Sessions:      sessions,
		Attendance:    engine,
		Notifications: notifications,
		Publisher:     publisher,
		DBHealth:      db,
		RedisHealth:   redisClient,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}
