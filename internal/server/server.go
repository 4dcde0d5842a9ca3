package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorpay/mentorpay/internal/audit"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/observability/metrics"
	"github.com/mentorpay/mentorpay/internal/payout"
	payoutdomain "github.com/mentorpay/mentorpay/internal/payout/domain"
	"github.com/mentorpay/mentorpay/internal/session"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	"github.com/mentorpay/mentorpay/internal/tax"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	"github.com/mentorpay/mentorpay/internal/webhook"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	audit.Module,
	session.Module,
	tax.Module,
	webhook.Module,
	payout.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	Metrics    *metrics.Metrics
	SessionSvc sessiondomain.Service
	TaxSvc     taxdomain.Service
	PayoutSvc  payoutdomain.Service
	WebhookSvc webhookdomain.Service
	AuditSvc   auditdomain.Service
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	metrics    *metrics.Metrics
	sessionSvc sessiondomain.Service
	taxSvc     taxdomain.Service
	payoutSvc  payoutdomain.Service
	webhookSvc webhookdomain.Service
	auditSvc   auditdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		db:         p.DB,
		metrics:    p.Metrics,
		sessionSvc: p.SessionSvc,
		taxSvc:     p.TaxSvc,
		payoutSvc:  p.PayoutSvc,
		webhookSvc: p.WebhookSvc,
		auditSvc:   p.AuditSvc,
	}
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(ErrorHandlingMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, s *Server) {
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/v1")
	{
		api.POST("/sessions", s.CreateSession)
		api.GET("/sessions", s.ListSessions)
		api.GET("/sessions/:id", s.GetSession)
		api.DELETE("/sessions/:id", s.DeleteSession)

		api.GET("/tax-config", s.GetTaxConfig)
		api.PUT("/tax-config", s.UpdateTaxConfig)

		api.POST("/payout-runs", s.CreatePayoutRun)
		api.GET("/payout-runs", s.ListPayoutRuns)
		api.GET("/payout-runs/:id", s.GetPayoutRun)
		api.PUT("/payout-runs/:id/tax-config", s.UpdatePayoutRunTaxConfig)
		api.PUT("/payout-runs/:id/adjustments", s.SetPayoutAdjustment)
		api.POST("/payout-runs/:id/simulate", s.SimulatePayoutRun)
		api.POST("/payout-runs/:id/finalize", s.FinalizePayoutRun)
		api.GET("/payout-runs/:id/breakdown", s.GetPayoutBreakdown)

		api.POST("/webhooks", s.CreateWebhookEndpoint)
		api.GET("/webhooks", s.ListWebhookEndpoints)
		api.GET("/webhooks/:id", s.GetWebhookEndpoint)
		api.PATCH("/webhooks/:id", s.UpdateWebhookEndpoint)
		api.DELETE("/webhooks/:id", s.DeleteWebhookEndpoint)
		api.POST("/webhooks/:id/test", s.TestWebhookEndpoint)
		api.GET("/webhooks/:id/deliveries", s.ListWebhookDeliveries)

		api.GET("/audit-logs", s.ListAuditLogs)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
