package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/notification"
	"rollcall/internal/queue"
	"rollcall/internal/store"
	"rollcall/internal/user"
)

// The worker consumes session-created events and writes one notification per
// non-admin user. It shares the Redis queue with the API process.
func main() {
	cfg := config.Load()

	logs, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logs.Closer()
	log := logs.Base

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	users := user.NewService(user.NewRepository(db.Client), auth.NewHasher(cfg.BcryptCost))
	notifications := notification.NewRepository(db.Client)
	deliverer := notification.NewDeliverer(users, notifications, log)
	worker := notification.NewWorker(q, deliverer, log)

	if err := worker.Run(ctx); err != nil {
		log.Fatal("worker failed", zap.Error(err))
	}
}
