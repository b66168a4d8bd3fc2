package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/sessioncache"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cache *sessioncache.Cache, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("bloghub"))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health probes
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	pingCache := func() error {
		if cache == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return cache.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingCache)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	postsRepo := postgres.NewPostsRepo(pool, prom)
	sessionsRepo := postgres.NewSessionsRepo(pool, prom)

	var sessionCache auth.SessionCache
	if cache != nil {
		sessionCache = cache
	}

	tokens := auth.NewTokenSource(cfg.TokenSecret, cfg.SessionTTL())
	authSvc := auth.NewService(usersRepo, sessionsRepo, sessionCache, tokens)

	authMW := middlewares.NewAuthMiddleware(authSvc)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	postsHandler := handlers.NewPostsHandler(postsRepo)

	r.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/me", authMW.RequireAuth(), authHandler.Me)

	r.POST("/users", usersHandler.Register)
	r.GET("/users", authMW.RequireAuth(), usersHandler.List)
	r.GET("/users/:id", authMW.RequireAuth(), usersHandler.Get)
	r.PUT("/users/:id", authMW.RequireAuth(), usersHandler.Update)
	r.PATCH("/users/:id", authMW.RequireAuth(), usersHandler.Update)
	r.DELETE("/users/:id", authMW.RequireAuth(), usersHandler.Delete)

	r.GET("/blog-posts", authMW.OptionalAuth(), postsHandler.List)
	r.POST("/blog-posts", authMW.RequireAuth(), postsHandler.Create)
	r.GET("/blog-posts/:id", authMW.OptionalAuth(), postsHandler.Get)
	r.PUT("/blog-posts/:id", authMW.RequireAuth(), postsHandler.Update)
	r.PATCH("/blog-posts/:id", authMW.RequireAuth(), postsHandler.Update)
	r.DELETE("/blog-posts/:id", authMW.RequireAuth(), postsHandler.Delete)

	return r
}
