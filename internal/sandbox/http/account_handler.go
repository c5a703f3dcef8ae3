package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/httputil"
	"github.com/allisson/phrsdk/internal/sandbox/http/dto"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
	customValidation "github.com/allisson/phrsdk/internal/validation"
)

// AccountHandler serves registration, token issuance and key lookup.
type AccountHandler struct {
	accounts sandboxUseCase.AccountUseCase
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts sandboxUseCase.AccountUseCase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// RegisterHandler creates an account.
// POST /users - no authentication. Returns 201 with the user id and client secret.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	creds, err := h.accounts.Register(c.Request.Context(), req.ToRegistration())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCredentialsToResponse(creds))
}

// TokenHandler issues a bearer token for the password grant.
// POST /oauth/token - form encoded, no authentication.
func (h *AccountHandler) TokenHandler(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.accounts.IssueToken(c.Request.Context(), uuid.MustParse(req.Username), req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenToResponse(token, time.Now()))
}

// UserInfoHandler describes the authenticated account.
// GET /userinfo
func (h *AccountHandler) UserInfoHandler(c *gin.Context) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	info, err := h.accounts.UserInfo(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserInfoToResponse(info))
}

// CommonKeyHandler returns one wrapped common key.
// GET /users/:uid/commonkeys/:id
func (h *AccountHandler) CommonKeyHandler(c *gin.Context) {
	userID, _ := GetUserID(c.Request.Context())

	key, err := h.accounts.CommonKey(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.CommonKeyResponse{CommonKey: key.EncryptedKey})
}
