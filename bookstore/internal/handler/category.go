package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

func (h *Handler) GetCategories(c echo.Context) error {
	categories, err := h.categorySvc.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	res := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		res = append(res, newCategoryResponse(cat))
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	category, err := h.categorySvc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req model.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.categorySvc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req model.CategoryRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, err = h.categorySvc.Update(c.Request().Context(), id, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if id, err = h.categorySvc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}
