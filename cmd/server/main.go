package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"yatube/internal/application/pagecache"
	feed_service "yatube/internal/application/service/feed"
	follow_service "yatube/internal/application/service/follow"
	group_service "yatube/internal/application/service/group"
	post_service "yatube/internal/application/service/post"
	user_service "yatube/internal/application/service/user"
	"yatube/internal/domain/ports/output/cache"
	"yatube/internal/infrastructure/config"
	delivery_grpc "yatube/internal/infrastructure/inbound/grpc"
	http_server "yatube/internal/infrastructure/inbound/http"
	"yatube/internal/infrastructure/inbound/http/web"
	metrics_server "yatube/internal/infrastructure/inbound/metrics"
	"yatube/internal/infrastructure/logger"
	"yatube/internal/infrastructure/outbound/auth/jwt"
	memory_cache "yatube/internal/infrastructure/outbound/cache/memory"
	redis_cache "yatube/internal/infrastructure/outbound/cache/redis"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
	comment_postgres "yatube/internal/infrastructure/outbound/repository/comment/postgres"
	follow_postgres "yatube/internal/infrastructure/outbound/repository/follow/postgres"
	group_postgres "yatube/internal/infrastructure/outbound/repository/group/postgres"
	post_postgres "yatube/internal/infrastructure/outbound/repository/post/postgres"
	"yatube/internal/infrastructure/outbound/repository/postgres"
	user_postgres "yatube/internal/infrastructure/outbound/repository/user/postgres"
	"yatube/internal/infrastructure/outbound/storage/local"
)

func main() {
	cfg := config.MustLoad()
	ctx := context.Background()
	log := logger.New(cfg.Env)
	dsn := cfg.Database.DSN()

	if err := postgres.Migrate(dsn, log); err != nil {
		log.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Error("Failed to parse postgres poolConfig", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("Failed to create postgres pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := prometheus_metrics.NewPrometheusMetricsProvider()
	metrics.SetServiceHealth(true)

	probes := map[string]delivery_grpc.Probe{"postgres": pool.Ping}

	var pageCache cache.PageCache = memory_cache.NewPageCache(log)
	if cfg.Redis.Enabled {
		log.Info("Connecting to Redis",
			slog.String("address", cfg.Redis.Address),
			slog.Int("port", cfg.Redis.Port),
			slog.Int("db", cfg.Redis.DB))
		redisClient, err := redis_cache.NewClient(cfg.Redis, log)
		if err != nil {
			// Keep the shared cache so cache-clear still reaches it; pages
			// render uncached until Redis answers again.
			log.Warn("Redis is unavailable, serving pages uncached until it recovers", slog.String("error", err.Error()))
			redisClient = redis_cache.OpenClient(cfg.Redis, log)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", slog.String("error", err.Error()))
			}
		}()
		pageCache = redis_cache.NewPageCache(redisClient, log)
		probes["redis"] = redisClient.Ping
	}

	unitOfWork := postgres.NewPostgresUOW(pool, log, metrics)
	userRepo := user_postgres.NewUserRepository(pool, log, metrics)
	groupRepo := group_postgres.NewGroupRepository(pool, log, metrics)
	postRepo := post_postgres.NewPostRepository(pool, log, metrics)
	commentRepo := comment_postgres.NewCommentRepository(pool, log, metrics)
	followRepo := follow_postgres.NewFollowRepository(pool, log, metrics)

	images := local.NewImageStorage(cfg.Media.Root, cfg.Media.MaxUploadBytes, log)
	tokens := jwt.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	postService := post_service.NewPostService(postRepo, commentRepo, images, unitOfWork, log, metrics)
	followService := follow_service.NewFollowService(followRepo, unitOfWork, log, metrics)
	feedService := feed_service.NewFeedService(postRepo, groupRepo, userRepo, followService, cfg.Feed.PostsPerPage, log)
	groupService := group_service.NewGroupService(groupRepo, log)
	userService := user_service.NewUserService(userRepo, tokens, log)

	indexCache := pagecache.NewMemoizer(pageCache, cfg.Feed.IndexCacheTTL, log, metrics)

	renderer, err := web.NewRenderer(cfg.Media.URLPrefix, log)
	if err != nil {
		log.Error("Failed to load templates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validate := web.NewValidator()

	router := http_server.NewRouter(http_server.RouterConfig{
		Handlers: http_server.Handlers{
			Feed:   web.NewFeedHandler(feedService, indexCache, renderer),
			Post:   web.NewPostHandler(postService, groupService, validate, renderer, cfg.Media.MaxUploadBytes, log),
			Follow: web.NewFollowHandler(followService, renderer, log),
			Auth: web.NewAuthHandler(userService, validate, renderer, web.SessionCookie{
				Name:   cfg.Auth.CookieName,
				TTL:    cfg.Auth.TokenTTL,
				Secure: cfg.Env == "prod",
			}),
		},
		Renderer:      renderer,
		Authenticator: userService,
		CookieName:    cfg.Auth.CookieName,
		MediaRoot:     cfg.Media.Root,
		MediaURL:      cfg.Media.URLPrefix,
		Log:           log,
		Metrics:       metrics,
	})

	httpServer := http_server.NewServer(router,
		cfg.HTTPServer.Address, cfg.HTTPServer.Port,
		cfg.HTTPServer.ReadTimeout, cfg.HTTPServer.WriteTimeout, log)
	grpcServer := delivery_grpc.NewServer(
		delivery_grpc.NewHealthService(probes, log, metrics),
		cfg.GRPCServer.Address, cfg.GRPCServer.Port, log)
	metricsServer := metrics_server.NewMetricsServer(cfg.Prometheus.Address, cfg.Prometheus.Port, log)
	metricsServer.HandleCacheClear(indexCache)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	httpDone := make(chan bool, 1)
	grpcDone := make(chan bool, 1)
	metricsDone := make(chan bool, 1)

	go func() {
		if err := httpServer.Run(); err != nil {
			log.Error("HTTP server error", slog.String("error", err.Error()))
		}
		httpDone <- true
	}()

	go func() {
		if err := grpcServer.Run(); err != nil {
			log.Error("gRPC server error", slog.String("error", err.Error()))
		}
		grpcDone <- true
	}()

	go func() {
		if err := metricsServer.Run(); err != nil {
			log.Error("Metrics server error", slog.String("error", err.Error()))
		}
		metricsDone <- true
	}()

	<-quit
	log.Info("Shutting down servers...")

	metrics.SetServiceHealth(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}

	if err := grpcServer.Shutdown(); err != nil {
		log.Error("gRPC server shutdown error", slog.String("error", err.Error()))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", slog.String("error", err.Error()))
	}

	<-httpDone
	<-grpcDone
	<-metricsDone

	log.Info("Server exited")
}
