package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, errs.ErrStorage):
		return http.StatusServiceUnavailable, "storage"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, kind := statusOf(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		// Driver messages stay in the log.
		h.log.Error("request error",
			logger.String("request_id", c.GetString(ctxRequestID)),
			logger.String("kind", kind),
			logger.Error(err),
		)
		msg = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: kind, Message: msg})
}
