package api

import (
	"net/http"

	"filedeck/internal/config"
	fdmiddleware "filedeck/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter 构建 HTTP 路由，集中注册所有对外服务的端点。
func NewRouter(cfg *config.Config, logger *zap.Logger, fileHandler *FileHandler, viewHandler *ViewHandler, objects *ObjectServer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(fdmiddleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(fdmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(fdmiddleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow, logger))
	r.Use(fdmiddleware.Metrics())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus 指标端点
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if fileHandler != nil {
			fileHandler.RegisterRoutes(r)
		}
		if viewHandler != nil {
			viewHandler.RegisterRoutes(r)
		}
	})

	// 预览组件与下载按 path 直接取字节
	if objects != nil {
		r.Get(cfg.FileServerPrefix+"*", objects.ServeFileServer)
	}

	return r
}
