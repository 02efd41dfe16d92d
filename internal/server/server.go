package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/auth/session"
	"github.com/nightmarket/aestore/internal/cart"
	cartdomain "github.com/nightmarket/aestore/internal/cart/domain"
	"github.com/nightmarket/aestore/internal/catalog"
	catalogdomain "github.com/nightmarket/aestore/internal/catalog/domain"
	"github.com/nightmarket/aestore/internal/checkout"
	"github.com/nightmarket/aestore/internal/clock"
	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/coupon"
	"github.com/nightmarket/aestore/internal/fulfillment"
	"github.com/nightmarket/aestore/internal/logger"
	"github.com/nightmarket/aestore/internal/metrics"
	"github.com/nightmarket/aestore/internal/order"
	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	"github.com/nightmarket/aestore/internal/payment"
	"github.com/nightmarket/aestore/internal/payment/webhook"
	"github.com/nightmarket/aestore/internal/pendingpayment"
	"github.com/nightmarket/aestore/internal/providers/email"
	"github.com/nightmarket/aestore/internal/providers/gameserver"
	"github.com/nightmarket/aestore/internal/ratelimit"
	"github.com/nightmarket/aestore/internal/redemption"
	"github.com/nightmarket/aestore/internal/user"
	"github.com/nightmarket/aestore/pkg/db"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	logger.Module,
	clock.Module,
	db.Module,
	metrics.Module,
	fx.Provide(registerGin),
	session.Module,
	user.Module,
	catalog.Module,
	cart.Module,
	coupon.Module,
	pendingpayment.Module,
	payment.Module,
	webhook.Module,
	order.Module,
	redemption.Module,
	email.Module,
	gameserver.Module,
	fulfillment.Module,
	checkout.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg *config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         *config.Config
	log         *zap.Logger
	sessions    *session.Manager
	catalogSvc  catalogdomain.Service
	cartSvc     cartdomain.Service
	checkoutSvc checkout.Service
	orderSvc    orderdomain.Service
	webhookSvc  webhook.Service
	limiter     *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         *config.Config
	Log         *zap.Logger
	Sessions    *session.Manager
	CatalogSvc  catalogdomain.Service
	CartSvc     cartdomain.Service
	CheckoutSvc checkout.Service
	OrderSvc    orderdomain.Service
	WebhookSvc  webhook.Service
	Limiter     *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		sessions:    p.Sessions,
		catalogSvc:  p.CatalogSvc,
		cartSvc:     p.CartSvc,
		checkoutSvc: p.CheckoutSvc,
		orderSvc:    p.OrderSvc,
		webhookSvc:  p.WebhookSvc,
		limiter:     p.Limiter,
	}
	svc.registerRoutes()
	return svc
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/packages", s.listPackages)
	api.GET("/packages/:id", s.getPackage)

	// Provider-facing endpoints authenticate via signature or re-query, not
	// session cookies.
	api.POST("/payments/:provider/webhook", s.handleProviderWebhook)
	api.GET("/payments/toyyibpay/return", s.handleToyyibPayReturn)
	api.POST("/payments/toyyibpay/callback", s.handleToyyibPayCallback)

	authed := api.Group("")
	authed.Use(s.AuthRequired())
	{
		authed.GET("/cart", s.listCart)
		authed.POST("/cart", s.addCartItem)
		authed.PATCH("/cart/:id", s.updateCartItem)
		authed.DELETE("/cart/:id", s.removeCartItem)
		authed.DELETE("/cart", s.clearCart)

		authed.POST("/coupons/preview", s.previewCoupon)

		authed.POST("/checkout/intents", s.rateLimited("checkout", 0.2, 5), s.createCheckoutIntent)

		authed.GET("/orders", s.listOrders)
		authed.GET("/orders/:id", s.getOrder)
		authed.POST("/orders/complete", s.completeOrder)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http.access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
