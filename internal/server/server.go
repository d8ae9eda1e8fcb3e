package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rjvb7424/learn-it-now/internal/checkout"
	checkoutdomain "github.com/rjvb7424/learn-it-now/internal/checkout/domain"
	"github.com/rjvb7424/learn-it-now/internal/config"
	"github.com/rjvb7424/learn-it-now/internal/course"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	"github.com/rjvb7424/learn-it-now/internal/observability"
	obsmiddleware "github.com/rjvb7424/learn-it-now/internal/observability/logger"
	obsmetrics "github.com/rjvb7424/learn-it-now/internal/observability/metrics"
	"github.com/rjvb7424/learn-it-now/internal/payout"
	payoutdomain "github.com/rjvb7424/learn-it-now/internal/payout/domain"
	"github.com/rjvb7424/learn-it-now/internal/purchase"
	purchasedomain "github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	"github.com/rjvb7424/learn-it-now/internal/ratelimit"
	"github.com/rjvb7424/learn-it-now/internal/user"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	user.Module,
	course.Module,
	purchase.Module,
	payout.Module,
	checkout.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	log         *zap.Logger
	userSvc     userdomain.Service
	courseSvc   coursedomain.Service
	purchaseSvc purchasedomain.Service
	payoutSvc   payoutdomain.Service
	checkoutSvc checkoutdomain.Service
	limiter     *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	UserSvc     userdomain.Service
	CourseSvc   coursedomain.Service
	PurchaseSvc purchasedomain.Service
	PayoutSvc   payoutdomain.Service
	CheckoutSvc checkoutdomain.Service
	Limiter     *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		log:         p.Log.Named("http.server"),
		userSvc:     p.UserSvc,
		courseSvc:   p.CourseSvc,
		purchaseSvc: p.PurchaseSvc,
		payoutSvc:   p.PayoutSvc,
		checkoutSvc: p.CheckoutSvc,
		limiter:     p.Limiter,
	}
	s.registerAPIRoutes()
	return s
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.PUT("/users/:uid", s.UpsertUser)
	api.GET("/users/:uid", s.GetUser)

	api.POST("/courses", s.CreateCourse)
	api.PATCH("/courses/:id", s.UpdateCourse)
	api.GET("/courses", s.ListCourses)
	api.GET("/courses/:id", s.GetCourse)
	api.POST("/courses/:id/enroll", s.EnrollFree)

	api.GET("/users/:uid/purchases", s.ListPurchases)
	api.GET("/users/:uid/purchases/:courseId", s.GetPurchase)
	api.PUT("/users/:uid/purchases/:courseId/progress", s.SetProgress)

	rl := s.cfg.RateLimit
	payouts := api.Group("/payouts",
		s.rateLimitMiddleware("payout", rl.PayoutRate, rl.PayoutBurst))
	payouts.POST("/account", s.CreatePayeeAccount)
	payouts.POST("/onboarding/link", s.CreateOnboardingLink)
	payouts.POST("/onboarding/status", s.CheckOnboardingStatus)
	payouts.POST("/onboarding/complete", s.CompleteOnboarding)
	payouts.POST("/dashboard-link", s.CreateDashboardLoginLink)

	co := api.Group("/checkout",
		s.rateLimitMiddleware("checkout", rl.CheckoutRate, rl.CheckoutBurst))
	co.POST("/start", s.StartCheckout)
	co.POST("/finalize", s.FinalizeCheckout)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
