package leave

import (
	"net/http"
	"strconv"
	"strings"

	"go-ems/internal/domain"
	leaveerrors "go-ems/internal/leave/errors"
	"go-ems/internal/shared/apperror"
	"go-ems/internal/shared/contextutil"
	"go-ems/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func principalFrom(c *gin.Context) domain.Principal {
	p, _ := contextutil.GetPrincipal(c.Request.Context())
	return p
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	log := contextutil.GetLogger(c.Request.Context(), h.logger)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	}
	if httpErr.Status >= http.StatusInternalServerError {
		log.Error("leave request failed", append(fields, zap.Error(err))...)
	} else {
		log.Warn("leave request failed", fields...)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("leave request validation failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	response.Error(c, appErr.HTTPStatus, apperror.CodeValidation, appErr.Message, appErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// ListAll paginates only when page or page_size is present.
func (h *Handler) ListAll(c *gin.Context) {
	filter := ListFilter{
		EmployeeID: c.Query("employee"),
		Status:     c.Query("status"),
	}

	resp, err := h.service.ListAll(c.Request.Context(), principalFrom(c), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	_, hasPage := c.GetQuery("page")
	_, hasPageSize := c.GetQuery("page_size")
	if !hasPage && !hasPageSize {
		response.Success(c, http.StatusOK, resp, nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	start, end := meta.Window()
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	resp, err := h.service.GetByEmployee(c.Request.Context(), principalFrom(c), c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), principalFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Balance(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeServiceError(c, leaveerrors.ErrInvalidYear)
			return
		}
		year = parsed
	}

	resp, err := h.service.Balance(c.Request.Context(), principalFrom(c), c.Param("employeeId"), year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
