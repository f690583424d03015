package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

func paramID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.bookSvc.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	res := make([]bookResponse, 0, len(books))
	for _, b := range books {
		res = append(res, newBookResponse(b))
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	book, err := h.bookSvc.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBookResponse(book))
}

func (h *Handler) bindBook(c echo.Context) (model.BookRequest, error) {
	var req model.BookRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return req, nil
}

func (h *Handler) CreateBook(c echo.Context) error {
	req, err := h.bindBook(c)
	if err != nil {
		return err
	}
	id, err := h.bookSvc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	req, err := h.bindBook(c)
	if err != nil {
		return err
	}
	id, err = h.bookSvc.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	id, err = h.bookSvc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}
