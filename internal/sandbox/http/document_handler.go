package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/phrsdk/internal/httputil"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
	"github.com/allisson/phrsdk/internal/sandbox/http/dto"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
)

// DocumentHandler serves the encrypted document endpoints.
type DocumentHandler struct {
	documents sandboxUseCase.DocumentUseCase
	maxSize   int64
	logger    *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler. Bodies above maxSize bytes are refused
// before they are read in full.
func NewDocumentHandler(documents sandboxUseCase.DocumentUseCase, maxSize int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxSize: maxSize, logger: logger}
}

// UploadHandler stores an octet-stream body.
// POST /users/:uid/documents - returns 201 with {document_id}.
func (h *DocumentHandler) UploadHandler(c *gin.Context) {
	body := io.Reader(c.Request.Body)
	if h.maxSize > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
				Error:   "payload_too_large",
				Message: sandboxDomain.ErrDocumentTooLarge.Error(),
			})
			return
		}
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	userID, _ := GetUserID(c.Request.Context())
	id, err := h.documents.Upload(c.Request.Context(), userID, data)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.DocumentResponse{DocumentID: id})
}

// DownloadHandler returns the stored bytes.
// GET /users/:uid/documents/:id
func (h *DocumentHandler) DownloadHandler(c *gin.Context) {
	userID, _ := GetUserID(c.Request.Context())

	data, err := h.documents.Download(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DeleteHandler removes a document.
// DELETE /users/:uid/documents/:id - returns 204.
func (h *DocumentHandler) DeleteHandler(c *gin.Context) {
	userID, _ := GetUserID(c.Request.Context())

	if err := h.documents.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
