package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/Astemirdum/bookstore/bookstore/docs"
	"github.com/Astemirdum/bookstore/pkg/auth"
	md "github.com/Astemirdum/bookstore/pkg/middleware"
	"github.com/Astemirdum/bookstore/pkg/validate"
)

const defaultMaxUploadSize = 10 << 20

type Services struct {
	Auth       AuthService
	Books      BookService
	Authors    AuthorService
	Categories CategoryService
	Cart       CartService
}

type Handler struct {
	authSvc     AuthService
	bookSvc     BookService
	authorSvc   AuthorService
	categorySvc CategoryService
	cartSvc     CartService
	tokens      md.TokenParser
	log         *zap.Logger

	development   bool
	staticDir     string
	maxUploadSize int64
}

type Option func(*Handler)

// WithDevelopment exposes raw error text in error responses.
func WithDevelopment(dev bool) Option {
	return func(h *Handler) { h.development = dev }
}

// WithStaticDir serves dir/images under /images.
func WithStaticDir(dir string) Option {
	return func(h *Handler) { h.staticDir = dir }
}

func WithMaxUploadSize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadSize = n
		}
	}
}

func New(svc Services, tokens md.TokenParser, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		authSvc:       svc.Auth,
		bookSvc:       svc.Books,
		authorSvc:     svc.Authors,
		categorySvc:   svc.Categories,
		cartSvc:       svc.Cart,
		tokens:        tokens,
		log:           log.Named("handler"),
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Policy is the access table of the api routes.
func Policy() *auth.Policy {
	return auth.NewPolicy(auth.Authenticated,
		auth.Rule{Method: http.MethodGet, Resource: "Ping", Access: auth.Public},
		auth.Rule{Method: http.MethodPost, Resource: "/Auth/register", Access: auth.Public},
		auth.Rule{Method: http.MethodPost, Resource: "/Auth/login", Access: auth.Public},
		auth.Rule{Method: http.MethodPost, Resource: "/Auth/register-admin", Access: auth.Admin},

		auth.Rule{Method: http.MethodGet, Resource: "Books", Access: auth.Public},
		auth.Rule{Method: auth.AnyMethod, Resource: "Books", Access: auth.Admin},
		auth.Rule{Method: http.MethodGet, Resource: "Authors", Access: auth.Public},
		auth.Rule{Method: auth.AnyMethod, Resource: "Authors", Access: auth.Admin},
		auth.Rule{Method: http.MethodGet, Resource: "Categories", Access: auth.Public},
		auth.Rule{Method: auth.AnyMethod, Resource: "Categories", Access: auth.Admin},

		auth.Rule{Method: auth.AnyMethod, Resource: "cart", Access: auth.Authenticated},
		// unmatched paths fall through to 404
		auth.Rule{Method: auth.AnyMethod, Resource: "/*", Access: auth.Public},
	)
}

var canonicalSegments = map[string]string{
	"auth":       "Auth",
	"books":      "Books",
	"authors":    "Authors",
	"categories": "Categories",
	"ping":       "Ping",
	"cart":       "cart",
}

// canonicalPath makes the first path segment case-insensitive.
func canonicalPath(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		p := strings.TrimPrefix(req.URL.Path, "/")
		seg, rest, found := strings.Cut(p, "/")
		if canon, ok := canonicalSegments[strings.ToLower(seg)]; ok && canon != seg {
			p = "/" + canon
			if found {
				p += "/" + rest
			}
			req.URL.Path = p
			req.URL.RawPath = ""
		}
		return next(c)
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HideBanner = true
	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	e.Pre(canonicalPath)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)
	if h.staticDir != "" {
		base.Static("/images", filepath.Join(h.staticDir, "images"))
	}

	api := e.Group("",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.Authorize(Policy(), h.tokens),
	)

	api.GET("/Ping", h.Ping)

	api.POST("/Auth/register", h.Register)
	api.POST("/Auth/register-admin", h.RegisterAdmin)
	api.POST("/Auth/login", h.Login)

	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dB", h.maxUploadSize))
	api.GET("/Books", h.GetBooks)
	api.GET("/Books/:id", h.GetBook)
	api.POST("/Books", h.CreateBook)
	api.PUT("/Books/:id", h.UpdateBook)
	api.DELETE("/Books/:id", h.DeleteBook)
	api.POST("/Books/upload-image", h.UploadImage, bodyLimit)
	api.PUT("/Books/:id/image", h.ReplaceImage, bodyLimit)
	api.DELETE("/Books/:id/image", h.RemoveImage)

	api.GET("/Authors", h.GetAuthors)
	api.GET("/Authors/:id", h.GetAuthor)
	api.POST("/Authors", h.CreateAuthor)
	api.PUT("/Authors/:id", h.UpdateAuthor)
	api.DELETE("/Authors/:id", h.DeleteAuthor)

	api.GET("/Categories", h.GetCategories)
	api.GET("/Categories/:id", h.GetCategory)
	api.POST("/Categories", h.CreateCategory)
	api.PUT("/Categories/:id", h.UpdateCategory)
	api.DELETE("/Categories/:id", h.DeleteCategory)

	api.GET("/cart", h.GetCart)
	api.DELETE("/cart", h.ClearCart)
	api.POST("/cart/items", h.AddToCart)
	api.PUT("/cart/items/:id", h.UpdateCartItem)
	api.DELETE("/cart/items/:id", h.RemoveCartItem)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type pingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, pingResponse{Status: "ok", Message: "Server is running"})
}
