package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediastash/internal/repository"
	"mediastash/internal/service"
)

func TestStatsHandler_GetStats(t *testing.T) {
	repo := &handlerRepo{
		totals: &repository.UsageTotals{
			SizeBytes:  1536,
			Count:      2,
			CountUsers: 1,
			ViewsCount: 7,
		},
		byUser: []repository.UserCount{{Username: "alice", Count: 2}},
		byType: []repository.TypeCount{{MimeType: "image/png", Count: 2}},
	}
	handler := NewStatsHandler(service.NewStatsService(repo))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary service.StatsSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Size != "1.5 kB" {
		t.Fatalf("unexpected size display: %q", summary.Size)
	}
	if summary.SizeBytes != 1536 || summary.Count != 2 || summary.ViewsCount != 7 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.CountByUser) != 1 || summary.CountByUser[0].Username != "alice" {
		t.Fatalf("unexpected count_by_user: %+v", summary.CountByUser)
	}
}
