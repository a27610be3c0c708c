// Package server wires the HTTP surface: routing, middleware, error mapping.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alphaedge/backend/internal/auth"
	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"github.com/alphaedge/backend/internal/auth/token"
	"github.com/alphaedge/backend/internal/clock"
	"github.com/alphaedge/backend/internal/config"
	"github.com/alphaedge/backend/internal/migration"
	"github.com/alphaedge/backend/internal/observability"
	obsmiddleware "github.com/alphaedge/backend/internal/observability/logger"
	obsmetrics "github.com/alphaedge/backend/internal/observability/metrics"
	"github.com/alphaedge/backend/internal/payment"
	paymentservice "github.com/alphaedge/backend/internal/payment/service"
	paymentwebhook "github.com/alphaedge/backend/internal/payment/webhook"
	"github.com/alphaedge/backend/internal/plan"
	plandomain "github.com/alphaedge/backend/internal/plan/domain"
	"github.com/alphaedge/backend/internal/ratelimit"
	"github.com/alphaedge/backend/internal/seed"
	"github.com/alphaedge/backend/internal/subscription"
	subscriptiondomain "github.com/alphaedge/backend/internal/subscription/domain"
	"github.com/alphaedge/backend/internal/user"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	pkgdb "github.com/alphaedge/backend/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	pkgdb.Module,
	migration.Module,
	fx.Provide(registerGin),
	auth.Module,
	user.Module,
	plan.Module,
	subscription.Module,
	payment.Module,
	ratelimit.Module,
	seed.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Log:   log.Named("http"),
		Debug: obsCfg.Debug(),
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authSvc         authdomain.Service
	tokens          *token.Manager
	authLimiter     *ratelimit.AuthLimiter
	userRepo        userdomain.Repository
	planRepo        plandomain.Repository
	paymentSvc      *paymentservice.Service
	webhookSvc      *paymentwebhook.Service
	subscriptionSvc subscriptiondomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthSvc         authdomain.Service
	Tokens          *token.Manager
	AuthLimiter     *ratelimit.AuthLimiter `optional:"true"`
	UserRepo        userdomain.Repository
	PlanRepo        plandomain.Repository
	PaymentSvc      *paymentservice.Service
	WebhookSvc      *paymentwebhook.Service
	SubscriptionSvc subscriptiondomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authSvc:         p.AuthSvc,
		tokens:          p.Tokens,
		authLimiter:     p.AuthLimiter,
		userRepo:        p.UserRepo,
		planRepo:        p.PlanRepo,
		paymentSvc:      p.PaymentSvc,
		webhookSvc:      p.WebhookSvc,
		subscriptionSvc: p.SubscriptionSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/signup", s.AuthRateLimit("signup"), s.Signup)
	authGroup.POST("/login", s.AuthRateLimit("login"), s.Login)
	authGroup.POST("/google", s.AuthRateLimit("google"), s.GoogleLogin)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	s.engine.GET("/plans", s.ListPlans)
	s.engine.GET("/plans/:id", s.GetPlanByID)

	users := s.engine.Group("/users", s.AuthRequired())
	{
		users.GET("/:id/profile", s.GetUserProfile)
		users.GET("/:id/payments", s.ListUserPayments)
	}
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhook/razorpay", s.HandleRazorpayWebhook)
}
