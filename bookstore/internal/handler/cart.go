package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/pkg/auth"
)

// currentUser returns the id of the authenticated caller.
func currentUser(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user id in token")
	}
	return userID, nil
}

func (h *Handler) GetCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	lines, err := h.cartSvc.ListItems(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(lines))
}

func (h *Handler) AddToCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req model.AddToCartRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.cartSvc.AddToCart(c.Request().Context(), userID, req.BookID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) UpdateCartItem(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c)
	if err != nil {
		return err
	}
	var req model.UpdateCartItemRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = h.cartSvc.UpdateQuantity(c.Request().Context(), userID, itemID, req.Quantity); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveCartItem(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	itemID, err := paramID(c)
	if err != nil {
		return err
	}
	if err = h.cartSvc.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err = h.cartSvc.Clear(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
