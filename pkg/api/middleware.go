package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"

	ctxRequestID = "request_id"
	ctxActor     = "actor"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("request_id", c.GetString(ctxRequestID)),
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		}
		if actor, ok := c.Get(ctxActor); ok {
			fields = append(fields, logger.Int64("user_id", actor.(models.Actor).ID))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// identity trusts X-User-ID; authentication happens at the gateway in front
// of this service.
func (h *Handler) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerUserID)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			abortUnauthorized(c, "missing or malformed "+headerUserID+" header")
			return
		}

		actor, err := h.svc.User().Resolve(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				abortUnauthorized(c, "unknown user")
				return
			}
			h.abortWithError(c, err)
			return
		}

		c.Set(ctxActor, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	return c.MustGet(ctxActor).(models.Actor)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: msg})
}
