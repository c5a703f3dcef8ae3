package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/phrsdk/internal/api"
	sandboxHTTP "github.com/allisson/phrsdk/internal/sandbox/http"
)

// createCORSMiddleware lets a browser build of the SDK call the sandbox from the given
// comma-separated origins. It returns nil when CORS is disabled or no origin is left
// after parsing.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodHead,
		},
		AllowHeaders: []string{"Authorization", "Content-Type", api.HeaderSDKVersion},
		// The SDK reads the search total and correlates failures by request id.
		ExposeHeaders:    []string{"X-Request-Id", sandboxHTTP.HeaderTotalCount},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func parseOrigins(value string) []string {
	var origins []string
	for part := range strings.SplitSeq(value, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
