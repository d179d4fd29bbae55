package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/vijayKota2776/Codeplay/internal/api"
	"github.com/vijayKota2776/Codeplay/internal/auth"
	"github.com/vijayKota2776/Codeplay/internal/collab"
	"github.com/vijayKota2776/Codeplay/internal/config"
	"github.com/vijayKota2776/Codeplay/internal/lab"
	"github.com/vijayKota2776/Codeplay/internal/runner"
	"github.com/vijayKota2776/Codeplay/internal/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	runSvc := runner.NewService(
		runner.NewRedisJobStore(rdb),
		runner.NewExecClient(cfg.Runner.BaseURL, cfg.Runner.Timeout),
		cfg.Runner.Timeout,
	)

	// Labs degrade gracefully: without a reachable container engine the
	// create endpoint answers 503 and everything else keeps working.
	var labSvc api.LabService
	if runtime, err := lab.NewDockerRuntime(ctx); err != nil {
		log.Printf("lab runtime not initialized, lab creation disabled: %v", err)
	} else {
		defer runtime.Close()
		svc := lab.NewService(
			runtime,
			lab.NewAllocator(cfg.Lab.PortMin, cfg.Lab.PortMax),
			lab.NewRegistry(),
			lab.Settings{
				Image:        cfg.Lab.Image,
				InternalPort: cfg.Lab.InternalPort,
				Host:         cfg.Lab.Host,
				ReadyTimeout: cfg.Lab.ReadyTimeout,
				PollInterval: cfg.Lab.PollInterval,
			},
		)
		svc.StartReaper(ctx, cfg.Lab.IdleTTL, cfg.Lab.ReapInterval)
		labSvc = svc
	}

	hub := collab.NewHub()
	handler := api.NewHandler(labSvc, runSvc)
	router := api.NewRouter(handler, collab.NewHandler(hub), auth.Middleware(auth.NewVerifier(cfg.Auth.Secret)))

	srv := server.New(cfg.HTTP, router)
	log.Printf("codeplay lab service listening on %s", srv.Addr())

	if err := srv.Run(ctx); err != nil && !errors.Is(err, server.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
