package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/httputil"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
)

// AuthenticationMiddleware validates the bearer token and stores the account id in the
// request context. Missing, malformed and expired tokens all answer 401.
func AuthenticationMiddleware(accounts sandboxUseCase.AccountUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		const bearerPrefix = "bearer "
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		userID, err := accounts.Authenticate(c.Request.Context(), header[len(bearerPrefix):])
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// OwnerMiddleware rejects requests whose :uid path parameter is not the authenticated
// account. Must run after AuthenticationMiddleware.
func OwnerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		pathID, err := uuid.Parse(c.Param("uid"))
		if err != nil || pathID != userID {
			logger.Debug("authorization failed: user path mismatch",
				slog.String("user_id", userID.String()),
				slog.String("path_user_id", c.Param("uid")))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
