package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taxiorders/config"
	"taxiorders/pkg/logger"
	"taxiorders/service"
)

type Handler struct {
	svc      service.IServiceManager
	log      logger.ILogger
	validate *validator.Validate
}

func NewHandler(svc service.IServiceManager, log logger.ILogger) *Handler {
	return &Handler{
		svc:      svc,
		log:      log,
		validate: newValidator(),
	}
}

// NewRouter wires every route. /health and the tariff list need no caller
// identity.
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(h.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	r.GET("/api/tariffs", h.Tariffs)

	api := r.Group("/api", h.identity())
	{
		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ClientOrders)
		api.GET("/orders/available", h.AvailableOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.GET("/orders/:id/history", h.OrderHistory)
		api.POST("/orders/:id/:action", h.TransitionOrder)

		api.GET("/driver/orders", h.DriverOrders)
	}

	return r
}

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// newValidator reports json field names so validation errors match the
// request body the caller sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
