package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

func (h *Handler) GetAuthors(c echo.Context) error {
	authors, err := h.authorSvc.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	res := make([]authorResponse, 0, len(authors))
	for _, a := range authors {
		res = append(res, newAuthorResponse(a))
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	author, err := h.authorSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAuthorResponse(author))
}

func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.AuthorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.authorSvc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) UpdateAuthor(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req model.AuthorRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id, err = h.authorSvc.Update(c.Request().Context(), id, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if id, err = h.authorSvc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}
