package api

import (
	"net/http"

	"mediastash/internal/service"

	"github.com/go-chi/chi/v5"
)

// StatsHandler 提供全局使用统计端点。
type StatsHandler struct {
	service *service.StatsService
}

func NewStatsHandler(s *service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.GetStats)
}

// GetStats 每次请求都重新聚合，返回完整快照。
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build stats")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
