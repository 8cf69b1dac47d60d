package rest

import (
	"context"
	"net/http"
	"strconv"
	"swiftcart/domain"
	"swiftcart/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type OrdersService interface {
	PlaceOrder(ctx context.Context, userID uint, deliveryAddress, contactNumber, paymentMethod string) (domain.Order, error)
	CancelOrder(ctx context.Context, actor domain.User, orderID uint) (domain.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]domain.Order, error)
	GetOrder(ctx context.Context, actor domain.User, orderID uint) (domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.User, orderID uint, status string) (domain.Order, error)
}

type PaymentsService interface {
	CreatePayment(ctx context.Context, userID uint, orderID uint) (domain.CheckoutPayment, error)
	ConfirmPayment(ctx context.Context, userID uint, orderID uint, gatewayOrderID, gatewayPaymentID, signature string) error
}

type OrdersHandler struct {
	ordersService   OrdersService
	paymentsService PaymentsService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewOrdersHandler(ordersService OrdersService, paymentsService PaymentsService) *OrdersHandler {
	return &OrdersHandler{
		ordersService:   ordersService,
		paymentsService: paymentsService,
		validator:       validator.New(),
		timeout:         15 * time.Second,
	}
}

type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	ContactNumber   string `json:"contact_number"`
	PaymentMethod   string `json:"payment_method" validate:"required"`
}

type ConfirmPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Checkout places the order from the caller's cart. Card and UPI orders
// come back with a payment block the client hands to the hosted gateway;
// COD orders are confirmed on the spot.
func (h *OrdersHandler) Checkout(c echo.Context) error {
	var req CheckoutRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	userID := actor(c).ID

	order, err := h.ordersService.PlaceOrder(ctx, userID, req.DeliveryAddress, req.ContactNumber, req.PaymentMethod)
	if err != nil {
		logger.Error("Failed to place order", err)
		return respondError(c, err)
	}

	resp := map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	}

	if domain.NeedsGateway(order.PaymentMethod) {
		payment, err := h.paymentsService.CreatePayment(ctx, userID, order.ID)
		if err != nil {
			logger.Error("Failed to create gateway payment", err)
			return respondError(c, err)
		}
		resp["payment"] = payment
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *OrdersHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.ListOrders(ctx, actor(c).ID)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get all orders",
		"orders":  orders,
	})
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, actor(c), orderID)
	if err != nil {
		logger.Error("Failed to get order", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.CancelOrder(ctx, actor(c), orderID)
	if err != nil {
		logger.Error("Failed to cancel order", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order cancelled",
		"order":   order,
	})
}

// ConfirmPayment is the browser-side checkout callback. The client posts
// the gateway's order id, payment id and signature after the hosted flow.
func (h *OrdersHandler) ConfirmPayment(c echo.Context) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	var req ConfirmPaymentRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.paymentsService.ConfirmPayment(ctx, actor(c).ID, orderID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		logger.Error("Failed to confirm payment", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Payment confirmed",
	})
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	orderID, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	var req UpdateOrderStatusRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, actor(c), orderID, req.Status)
	if err != nil {
		logger.Error("Failed to update order status", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func parseOrderID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
