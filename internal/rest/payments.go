package rest

import (
	"context"
	"net/http"
	"strconv"
	"swiftcart/domain"
	"swiftcart/pkg/logger"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type PaymentsReader interface {
	GetPayment(ctx context.Context, userID uint, paymentID uint) (domain.Payment, error)
	ListPayments(ctx context.Context, userID uint) ([]domain.Payment, error)
}

type PaymentsHandler struct {
	paymentsReader PaymentsReader
	timeout        time.Duration
}

func NewPaymentsHandler(paymentsReader PaymentsReader) *PaymentsHandler {
	return &PaymentsHandler{
		paymentsReader: paymentsReader,
		timeout:        10 * time.Second,
	}
}

func (h *PaymentsHandler) ListPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	payments, err := h.paymentsReader.ListPayments(ctx, actor(c).ID)
	if err != nil {
		logger.Error("Failed to list payments", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all payments",
		"payments": payments,
	})
}

func (h *PaymentsHandler) GetPayment(c echo.Context) error {
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid payment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	payment, err := h.paymentsReader.GetPayment(ctx, actor(c).ID, uint(paymentID))
	if err != nil {
		logger.Error("Failed to get payment", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(payment))
}
