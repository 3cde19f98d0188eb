package server

import (
	"context"
	"embed"
	"html/template"
	"io"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/handler"
	"minecraft-store/internal/middleware"
	"minecraft-store/internal/model"
	"minecraft-store/internal/ratelimit"
	"minecraft-store/internal/repository"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Services bundles what the handlers need.
type Services struct {
	Catalog  service.CatalogService
	Basket   service.BasketService
	Checkout service.CheckoutService
	Webhook  service.WebhookService
	Sales    service.SalesService
	Login    service.LoginService
}

type Server struct {
	echo            *echo.Echo
	storeHandler    *handler.StoreHandler
	basketHandler   *handler.BasketHandler
	checkoutHandler *handler.CheckoutHandler
	webhookHandler  *handler.WebhookHandler
	salesHandler    *handler.SalesHandler
	session         echo.MiddlewareFunc
	basketLimit     echo.MiddlewareFunc
}

func NewServer(
	svc Services,
	sessions *session.Store,
	webhookEventRepo repository.WebhookEventRepository,
	basketLimiter ratelimit.Limiter,
	logger *zap.Logger,
) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = dto.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		storeHandler:    handler.NewStoreHandler(svc.Catalog, svc.Basket),
		basketHandler:   handler.NewBasketHandler(svc.Basket, svc.Checkout, sessions),
		checkoutHandler: handler.NewCheckoutHandler(svc.Checkout, sessions, logger),
		webhookHandler:  handler.NewWebhookHandler(svc.Webhook, svc.Login, sessions),
		salesHandler:    handler.NewSalesHandler(svc.Sales),
		session:         middleware.Session(sessions, webhookEventRepo, logger),
		basketLimit:     middleware.RateLimit(basketLimiter, "basket"),
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// -------- pages --------
	s.echo.GET("/", s.storeHandler.Page, s.session)
	s.echo.GET("/store", s.storeHandler.Page, s.session)
	s.echo.POST("/store/checkout", s.checkoutHandler.SubmitCheckout, s.session)
	s.echo.GET("/store/checkout/confirmed", s.checkoutHandler.Confirmed, s.session)
	s.echo.GET("/store/complete", s.checkoutHandler.Complete, s.session)

	api := s.echo.Group("/api")
	api.GET("/health", handler.Health)

	// -------- catalog --------
	api.GET("/store", s.storeHandler.Catalog)
	api.GET("/packages/:id", s.storeHandler.GetPackage)
	api.GET("/sales", s.salesHandler.RecentSales)
	api.GET("/payments", s.salesHandler.Payments)

	// -------- basket --------
	basket := api.Group("/basket", s.session)
	basket.GET("", s.basketHandler.GetBasket)
	basket.GET("/auth", s.basketHandler.AuthLinks)
	basket.POST("/add", s.basketHandler.AddItem, s.basketLimit)
	basket.POST("/remove", s.basketHandler.RemoveItem, s.basketLimit)
	basket.DELETE("/items/:id", s.basketHandler.RemoveItem, s.basketLimit)
	basket.POST("/update", s.basketHandler.UpdateQuantity, s.basketLimit)
	basket.PUT("/items/:id", s.basketHandler.SetQuantity, s.basketLimit)
	basket.POST("/coupon", s.basketHandler.ApplyCoupon, s.basketLimit)
	basket.POST("/checkout", s.basketHandler.Checkout)
	basket.POST("/cancel", s.basketHandler.Cancel)

	// -------- checkout --------
	checkout := api.Group("/checkout", s.session)
	checkout.POST("", s.checkoutHandler.BuyNow, s.basketLimit)
	checkout.POST("/direct", s.checkoutHandler.DirectPurchase, s.basketLimit)
	checkout.GET("/status", s.checkoutHandler.Status)

	// -------- provider webhooks --------
	webhooks := api.Group("/webhooks")
	webhooks.POST("/tebex", s.webhookHandler.TebexWebhook)
	webhooks.GET("/login", s.webhookHandler.VerifyLogin)
	api.POST("/webhook", s.webhookHandler.TebexWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

type templateRenderer struct {
	templates *template.Template
}

func newRenderer() (*templateRenderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"packagesIn": packagesIn,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: tmpl}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func packagesIn(sf *model.Storefront, categoryID int) []model.Package {
	var out []model.Package
	for _, p := range sf.Packages {
		if p.Category.ID == categoryID {
			out = append(out, p)
		}
	}
	return out
}
