package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
)

type problem struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrFileProcessing):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	p := problem{Status: http.StatusInternalServerError, Title: "internal server error"}
	var (
		he *echo.HTTPError
		de *errs.Error
	)
	switch {
	case errors.As(err, &he):
		p.Status = he.Code
		p.Title = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	case errors.As(err, &de):
		p.Status = statusOf(err)
		p.Title = de.Msg
	default:
		if s := statusOf(err); s != http.StatusInternalServerError {
			p.Status = s
			p.Title = err.Error()
		}
	}
	if h.development {
		p.Detail = err.Error()
	}
	p.TraceID = c.Response().Header().Get(echo.HeaderXRequestID)
	if p.TraceID == "" {
		p.TraceID = c.Request().Header.Get(echo.HeaderXRequestID)
	}

	if p.Status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("trace_id", p.TraceID),
			zap.Error(err))
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(p.Status)
	} else {
		werr = c.JSON(p.Status, p)
	}
	if werr != nil {
		h.log.Error("write error response", zap.Error(werr))
	}
}

// badRequest maps every domain failure of the auth endpoints to 400, other errors pass through.
func badRequest(err error) error {
	var de *errs.Error
	if errors.As(err, &de) {
		return echo.NewHTTPError(http.StatusBadRequest, de.Msg)
	}
	return err
}
