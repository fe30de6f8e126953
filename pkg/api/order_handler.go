package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"
	"taxiorders/pkg/pricing"
)

const headerIdempotencyKey = "Idempotency-Key"

type createOrderRequest struct {
	FromAddress  string   `json:"from_address" validate:"required,max=512"`
	ToAddress    string   `json:"to_address" validate:"required,max=512"`
	VehicleClass string   `json:"vehicle_class" validate:"required,oneof=economy comfort business"`
	DistanceKm   *float64 `json:"distance_km" validate:"required,gte=0,lte=20000"`
	Comment      *string  `json:"comment" validate:"omitempty,max=1024"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, errs.NewValidationErrorWithCause("body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.abortWithError(c, validationError(err))
		return
	}

	var key *string
	if raw := c.GetHeader(headerIdempotencyKey); raw != "" {
		if err := h.validate.Var(raw, "max=128,printascii"); err != nil {
			h.abortWithError(c, errs.NewValidationErrorWithCause("idempotency_key", err))
			return
		}
		key = &raw
	}

	order, err := h.svc.Order().CreateOrder(c.Request.Context(), actorFrom(c), models.CreateOrderRequest{
		FromAddress:    req.FromAddress,
		ToAddress:      req.ToAddress,
		VehicleClass:   models.VehicleClass(req.VehicleClass),
		DistanceKm:     *req.DistanceKm,
		Comment:        req.Comment,
		IdempotencyKey: key,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ClientOrders(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.IsClient() {
		h.abortWithError(c, errs.NewForbiddenError(actor.ID, "only clients have an order list"))
		return
	}

	orders, err := h.svc.Query().ForClient(c.Request.Context(), actor.ID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) AvailableOrders(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.IsDriver() {
		h.abortWithError(c, errs.NewForbiddenError(actor.ID, "only drivers see available orders"))
		return
	}

	orders, err := h.svc.Query().AvailableForDrivers(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) DriverOrders(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.IsDriver() {
		h.abortWithError(c, errs.NewForbiddenError(actor.ID, "only drivers have assigned orders"))
		return
	}

	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s, err := models.ParseOrderStatus(raw)
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		status = &s
	}

	orders, err := h.svc.Query().ForDriver(c.Request.Context(), actor.ID, status)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.svc.Query().Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) OrderHistory(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	history, err := h.svc.Query().History(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if history == nil {
		history = []*models.OrderTransition{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) TransitionOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	action, err := models.ParseAction(c.Param("action"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	order, err := h.svc.Order().Transition(c.Request.Context(), actorFrom(c), id, action)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type tariff struct {
	VehicleClass models.VehicleClass `json:"vehicle_class"`
	PerKm        float64             `json:"per_km"`
}

func (h *Handler) Tariffs(c *gin.Context) {
	classes := pricing.Classes()
	out := make([]tariff, 0, len(classes))
	for _, class := range classes {
		out = append(out, tariff{VehicleClass: class, PerKm: pricing.PerKmRates[class]})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.abortWithError(c, errs.NewValidationErrorWithCause("id", errors.New("order id must be a positive integer")))
		return 0, false
	}
	return id, true
}

// validationError names the first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.NewValidationErrorWithCause(fieldErrs[0].Field(), err)
	}
	return errs.NewValidationErrorWithCause("body", err)
}
