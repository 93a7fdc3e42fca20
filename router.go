package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resumepilot/resumepilot/backend/go-services/handlers"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/app"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generation"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/revocation"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func newRouter(a *app.App, verifier middleware.Verifier, jobSvc *generation.JobService) *gin.Engine {
	cfg := a.Config
	r := gin.New()

	origin := cfg.Server.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when every dependency in use is reachable
	r.GET("/ready", func(c *gin.Context) {
		deps := a.Ready(c.Request.Context())
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	revoked := revocation.New(a.Redis)
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(verifier, middleware.WithRevocation(revoked)))
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && a.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(a.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handlers.NewAuthHandler(revoked).Register(api)
	handlers.NewFilesHandler(a.Files).Register(api)
	handlers.NewTemplatesHandler(a.Templates).Register(api)
	handlers.NewResumeHandler(a.Orchestrator, jobSvc).Register(api)
	handlers.NewGeneratedHandler(a.Generated).Register(api)
	return r
}
