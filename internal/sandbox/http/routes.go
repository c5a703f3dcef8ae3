package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RateLimit configures the per-account rate limit of authenticated routes.
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Handlers groups the sandbox handlers.
type Handlers struct {
	Accounts  *AccountHandler
	Records   *RecordHandler
	Documents *DocumentHandler
}

// RegisterRoutes mounts the sandbox API on router. ctx bounds background work of the
// middleware such as rate limiter eviction.
func RegisterRoutes(
	ctx context.Context,
	router gin.IRouter,
	handlers Handlers,
	auth gin.HandlerFunc,
	rateLimit RateLimit,
	logger *slog.Logger,
) {
	router.POST("/oauth/token", handlers.Accounts.TokenHandler)
	router.POST("/users", handlers.Accounts.RegisterHandler)

	authenticated := router.Group("")
	authenticated.Use(auth)
	if rateLimit.Enabled {
		authenticated.Use(RateLimitMiddleware(ctx, rateLimit.RPS, rateLimit.Burst, logger))
	}

	authenticated.GET("/userinfo", handlers.Accounts.UserInfoHandler)

	user := authenticated.Group("/users/:uid")
	user.Use(OwnerMiddleware(logger))
	{
		user.GET("/commonkeys/:id", handlers.Accounts.CommonKeyHandler)

		user.POST("/records", handlers.Records.CreateHandler)
		user.GET("/records", handlers.Records.SearchHandler)
		user.HEAD("/records", handlers.Records.CountHandler)
		user.GET("/records/:id", handlers.Records.GetHandler)
		user.PUT("/records/:id", handlers.Records.UpdateHandler)
		user.DELETE("/records/:id", handlers.Records.DeleteHandler)

		user.POST("/documents", handlers.Documents.UploadHandler)
		user.GET("/documents/:id", handlers.Documents.DownloadHandler)
		user.DELETE("/documents/:id", handlers.Documents.DeleteHandler)
	}
}
