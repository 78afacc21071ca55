package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tripnest/backoffice/docs"
	"github.com/tripnest/backoffice/internal/app/api/handlers"
	mw "github.com/tripnest/backoffice/internal/app/api/middleware"
	"github.com/tripnest/backoffice/internal/app/service/discount"
	"github.com/tripnest/backoffice/internal/app/service/report"
	cfgpkg "github.com/tripnest/backoffice/pkg/config"
	metrics "github.com/tripnest/backoffice/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Tracing is global; request logger & access log are attached per group
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, disc *discount.Service, rpt *report.Service) {
	// Prometheus metrics on a dedicated listener
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			Subsystem:   "backoffice",
			MetricsList: []*metrics.Metric{metrics.MetricsBusinessProcess},
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin group: bearer auth on top of the logging chain. Static report
	// routes register before the :id routes so /dashboard and /analytics
	// never resolve as discount ids.
	admin := r.Group("/api/v1/admin")
	admin.Use(
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.AdminAuthMiddleware(cfg.Auth.Secret),
	)
	handlers.RegisterReportRoutes(admin, rpt, log)
	handlers.RegisterDiscountRoutes(admin, disc, log)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
