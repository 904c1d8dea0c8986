package balance

import (
	"net/http"
	"strconv"
	"time"

	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/contextutil"
	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l, now: time.Now}
}

// GetMine lists the caller's balances for ?year=, defaulting to this year.
func (h *Handler) GetMine(c *gin.Context) {
	year := h.now().UTC().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1900 {
			appErr := apperror.InvalidField("Year")
			response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
			return
		}
		year = parsed
	}

	resp, err := h.service.ListByEmployee(c.Request.Context(), c.GetString("company_id"), c.GetString("employee_id"), year)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		contextutil.GetLogger(c.Request.Context(), h.logger).Error("list balances failed", zap.Error(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
