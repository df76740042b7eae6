package api

import (
	"net/http"

	"mediastash/internal/config"
	msmiddleware "mediastash/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 构建 HTTP 路由，集中注册所有对外服务的端点。
func NewRouter(cfg *config.Config, fileHandler *FileHandler, statsHandler *StatsHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(msmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(msmiddleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
	r.Use(msmiddleware.Metrics())

	// 健康检查不需要鉴权
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus 指标端点
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthEnabled {
			switch cfg.AuthMode {
			case "jwt":
				r.Use(msmiddleware.JWTAuth(cfg.JWKSURL, cfg.JWTSecret))
			default:
				r.Use(msmiddleware.SessionAuth(cfg.SessionTokens))
			}
		}

		if fileHandler != nil {
			fileHandler.RegisterRoutes(r)
		}
		if statsHandler != nil {
			statsHandler.RegisterRoutes(r)
		}
	})

	return r
}
