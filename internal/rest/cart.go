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

type CartService interface {
	AddToCart(ctx context.Context, userID uint, productID uint64, quantity int) error
	UpdateQuantity(ctx context.Context, userID uint, productID uint64, quantity int) error
	RemoveFromCart(ctx context.Context, userID uint, productID uint64) error
	ViewCart(ctx context.Context, userID uint) (domain.CartView, error)
}

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
		timeout:     10 * time.Second,
	}
}

type CartAddRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type CartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) ViewCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.cartService.ViewCart(ctx, actor(c).ID)
	if err != nil {
		logger.Error("Failed to view cart", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req CartAddRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.AddToCart(ctx, actor(c).ID, req.ProductID, req.Quantity); err != nil {
		logger.Error("Failed to add to cart", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item added to cart",
	})
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var req CartUpdateRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.UpdateQuantity(ctx, actor(c).ID, productID, req.Quantity); err != nil {
		logger.Error("Failed to update cart quantity", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Cart updated",
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.RemoveFromCart(ctx, actor(c).ID, productID); err != nil {
		logger.Error("Failed to remove from cart", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Item removed from cart",
	})
}
