package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const imageFormField = "file"

func (h *Handler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is not selected or empty")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.bookSvc.UploadImage(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, imageResponse{ImageURL: url})
}

func (h *Handler) ReplaceImage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is not selected or empty")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.bookSvc.ReplaceImage(c.Request().Context(), id, fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, imageResponse{ImageURL: url})
}

func (h *Handler) RemoveImage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err = h.bookSvc.RemoveImage(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "image deleted"})
}
