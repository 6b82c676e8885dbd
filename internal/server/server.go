package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/coursesync/internal/config"
	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	"github.com/smallbiznis/coursesync/internal/events"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	"github.com/smallbiznis/coursesync/internal/observability"
	obsmiddleware "github.com/smallbiznis/coursesync/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/coursesync/internal/observability/metrics"
	obstracing "github.com/smallbiznis/coursesync/internal/observability/tracing"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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
			log.Info("http server started", zap.String("addr", cfg.HTTPAddr))
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	dispatcher    *events.Dispatcher
	identitySvc   identitydomain.Service
	enrollmentSvc enrollmentdomain.Service
	downloadSvc   downloaddomain.Service
	synclogSvc    synclogdomain.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	Dispatcher    *events.Dispatcher
	IdentitySvc   identitydomain.Service
	EnrollmentSvc enrollmentdomain.Service
	DownloadSvc   downloaddomain.Service
	SynclogSvc    synclogdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		dispatcher:    p.Dispatcher,
		identitySvc:   p.IdentitySvc,
		enrollmentSvc: p.EnrollmentSvc,
		downloadSvc:   p.DownloadSvc,
		synclogSvc:    p.SynclogSvc,
	}

	svc.registerEventRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerEventRoutes() {
	ev := s.engine.Group("/v1/events")

	ev.POST("/order-completed", s.OrderCompletedEvent)
	ev.POST("/subscription-status", s.SubscriptionStatusEvent)
	ev.POST("/user-login", s.UserLoginEvent)
	ev.POST("/download", s.DownloadEvent)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	api.POST("/users/:id/sync", s.SyncUser)
	api.GET("/users/:id/download-permissions", s.ListDownloadPermissions)
	api.GET("/sync-logs", s.ListSyncLogs)
}
