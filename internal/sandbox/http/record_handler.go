package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/httputil"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
	"github.com/allisson/phrsdk/internal/sandbox/http/dto"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
	customValidation "github.com/allisson/phrsdk/internal/validation"
)

// HeaderTotalCount carries the number of records matching a search.
const HeaderTotalCount = "x-total-count"

// RecordHandler serves the record envelope endpoints.
type RecordHandler struct {
	records sandboxUseCase.RecordUseCase
	logger  *slog.Logger
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler(records sandboxUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

func (h *RecordHandler) bindRecord(c *gin.Context) (*dto.RecordRequest, bool) {
	var req dto.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}
	return &req, true
}

// recordID parses the :id path parameter. Malformed ids cannot exist and answer 404.
func (h *RecordHandler) recordID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, sandboxDomain.ErrRecordNotFound, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// CreateHandler stores a new envelope.
// POST /users/:uid/records - returns 201 with the stored envelope.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}
	userID, _ := GetUserID(c.Request.Context())

	record := req.ToRecord(userID)
	if err := h.records.Create(c.Request.Context(), record); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// UpdateHandler replaces an envelope.
// PUT /users/:uid/records/:id
func (h *RecordHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	req, ok := h.bindRecord(c)
	if !ok {
		return
	}
	userID, _ := GetUserID(c.Request.Context())

	record := req.ToRecord(userID)
	record.ID = id
	if err := h.records.Update(c.Request.Context(), record); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// GetHandler returns one envelope.
// GET /users/:uid/records/:id
func (h *RecordHandler) GetHandler(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	userID, _ := GetUserID(c.Request.Context())

	record, err := h.records.Get(c.Request.Context(), userID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

func (h *RecordHandler) bindFilter(c *gin.Context) (sandboxDomain.RecordFilter, bool) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return sandboxDomain.RecordFilter{}, false
	}

	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return sandboxDomain.RecordFilter{}, false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return sandboxDomain.RecordFilter{}, false
	}

	userID, _ := GetUserID(c.Request.Context())
	filter, err := req.ToFilter(userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return sandboxDomain.RecordFilter{}, false
	}
	return filter, true
}

// SearchHandler returns one page of matching envelopes and the total in x-total-count.
// GET /users/:uid/records
func (h *RecordHandler) SearchHandler(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	records, total, err := h.records.Search(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header(HeaderTotalCount, strconv.Itoa(total))
	c.JSON(http.StatusOK, dto.MapRecordsToResponse(records))
}

// CountHandler reports the number of matching envelopes in x-total-count.
// HEAD /users/:uid/records
func (h *RecordHandler) CountHandler(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	total, err := h.records.Count(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header(HeaderTotalCount, strconv.Itoa(total))
	c.Status(http.StatusOK)
}

// DeleteHandler removes an envelope.
// DELETE /users/:uid/records/:id - returns 204.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}
	userID, _ := GetUserID(c.Request.Context())

	if err := h.records.Delete(c.Request.Context(), userID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
