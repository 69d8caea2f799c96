package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/billingconsole/internal/authorization"
	billingservice "github.com/smallbiznis/billingconsole/internal/billing/service"
	"github.com/smallbiznis/billingconsole/internal/broadcast"
	"github.com/smallbiznis/billingconsole/internal/config"
	"github.com/smallbiznis/billingconsole/internal/observability"
	obsmiddleware "github.com/smallbiznis/billingconsole/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/billingconsole/internal/observability/metrics"
	obstracing "github.com/smallbiznis/billingconsole/internal/observability/tracing"
	"github.com/smallbiznis/billingconsole/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
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
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(obsmetrics.GinMiddleware(httpMetrics))
	}
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

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine  *gin.Engine
	cfg     config.Config
	log     *zap.Logger
	screens *billingservice.Manager
	hub     *broadcast.Hub
	authz   authorization.Service
	limiter *ratelimit.SubmitLimiter
}

type ServerParams struct {
	fx.In

	Gin     *gin.Engine
	Cfg     config.Config
	Log     *zap.Logger
	Screens *billingservice.Manager
	Hub     *broadcast.Hub
	Authz   authorization.Service
	Limiter *ratelimit.SubmitLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:  p.Gin,
		cfg:     p.Cfg,
		log:     p.Log.Named("http.server"),
		screens: p.Screens,
		hub:     p.Hub,
		authz:   p.Authz,
		limiter: p.Limiter,
	}
	svc.RegisterRoutes()
	return svc
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.ActorRequired())

	api.POST("/screens", s.OpenScreen)

	screens := api.Group("/screens/:id", s.ScreenContext())
	screens.GET("", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingView), s.GetScreen)
	screens.POST("/enter", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingView), s.EnterScreen)
	screens.POST("/card/update", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingManage), s.RequestCardUpdate)
	screens.POST("/card/capture", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingManage), s.BeginCapture)
	screens.POST("/card", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingManage), s.LimitSubmissions(), s.SubmitCard)
	screens.GET("/invoices", s.authorizeScreen(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.PageInvoices)
	screens.GET("/notices", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingView), s.DrainNotices)
	screens.POST("/close", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingView), s.CloseScreen)
	screens.DELETE("", s.authorizeScreen(authorization.ObjectBilling, authorization.ActionBillingView), s.DeleteScreen)

	api.POST("/broadcast", s.PublishBroadcast)
}
