package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Astemirdum/bookstore/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "

	// SlowRequest is the latency above which a request is logged as a warning.
	SlowRequest = 500 * time.Millisecond
)

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authorize checks every request against policy exactly once. A bearer token,
// when present, is verified and its identity put into the request context.
func Authorize(policy *auth.Policy, tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := policy.Lookup(c.Request().Method, c.Path())

			var id *auth.Identity
			if authorization := c.Request().Header.Get(AuthorizationHeader); authorization != "" {
				// Public routes stay reachable anonymously whatever the header holds.
				if !strings.HasPrefix(authorization, bearer) {
					if access == auth.Public {
						return next(c)
					}
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}
				parsed, err := tokens.Parse(strings.TrimPrefix(authorization, bearer))
				if err != nil {
					if access == auth.Public {
						return next(c)
					}
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				id = &parsed
				req := c.Request()
				c.SetRequest(req.WithContext(auth.SetAuthContext(req.Context(), parsed)))
			}

			if !auth.Allows(access, id) {
				if id == nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
				}
				return echo.NewHTTPError(http.StatusForbidden, "forbidden: requires admin role")
			}
			return next(c)
		}
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			switch {
			case v.Error != nil:
				level = zapcore.ErrorLevel
			case v.Latency > SlowRequest:
				level = zapcore.WarnLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}
