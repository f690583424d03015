package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.register(c, req, model.RoleUser)
}

// RegisterAdmin creates an admin account. Access is restricted to admins by the policy table.
func (h *Handler) RegisterAdmin(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.register(c, req, model.RoleAdmin)
}

func (h *Handler) register(c echo.Context, req model.RegisterRequest, role model.Role) error {
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, err := h.authSvc.Register(c.Request().Context(), req, role)
	if err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.authSvc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return badRequest(err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		userResponse: newUserResponse(res.User),
		Token:        res.Token,
	})
}
