package web

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/report"
	"BikeSharing/src/storage"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// DatasetSource 提供当前的数据快照
type DatasetSource interface {
	Current() (*processor.Dataset, error)
	Path() string
}

type Dependencies struct {
	Source   DatasetSource
	Builder  *report.Builder
	Logs     *storage.Logger // 为空时 /logs 返回 404
	LogoPath string
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	config Config
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	h := NewHandler(config.Dependencies)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/", h.Dashboard)
	router.Get("/charts/{panel}.png", h.Chart)
	router.Get("/api/report", h.Report)
	router.Get("/export.xlsx", h.Export)
	router.Get("/static/logo.png", h.Logo)
	router.Get("/logs", h.Logs)
	router.Get("/healthz", h.Health)
	router.Handle("/metrics", promhttp.Handler())

	return &WebAPI{
		router: router,
		logger: &logger,
		config: config,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler 返回路由, 供测试直接使用
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start 启动服务, ctx 结束后优雅退出
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		timeout := w.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}
