package service

import (
	"context"
	"errors"
	"testing"

	"mediastash/internal/repository"
)

func TestStatsService_Summary_AssemblesSnapshot(t *testing.T) {
	repo := &mockFileRepo{
		totals: &repository.UsageTotals{
			SizeBytes:  2560,
			Count:      3,
			CountUsers: 2,
			ViewsCount: 9,
		},
		byUser: []repository.UserCount{
			{Username: "alice", Count: 2},
			{Username: "bob", Count: 1},
		},
		byType: []repository.TypeCount{
			{MimeType: "image/png", Count: 3},
		},
	}
	svc := NewStatsService(repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if summary.SizeBytes != 2560 {
		t.Fatalf("unexpected size_num: %d", summary.SizeBytes)
	}
	if summary.Size != "2.5 kB" {
		t.Fatalf("unexpected size display: %q", summary.Size)
	}
	if summary.Count != 3 || summary.CountUsers != 2 || summary.ViewsCount != 9 {
		t.Fatalf("unexpected scalar aggregates: %+v", summary)
	}
	if len(summary.CountByUser) != 2 || summary.CountByUser[0].Username != "alice" {
		t.Fatalf("unexpected count_by_user: %+v", summary.CountByUser)
	}
	if len(summary.TypesCount) != 1 || summary.TypesCount[0].MimeType != "image/png" {
		t.Fatalf("unexpected types_count: %+v", summary.TypesCount)
	}
}

func TestStatsService_Summary_EmptyDatabase(t *testing.T) {
	repo := &mockFileRepo{totals: &repository.UsageTotals{}}
	svc := NewStatsService(repo)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if summary.Size != "0.0 B" {
		t.Fatalf("empty stash should format as 0.0 B, got %q", summary.Size)
	}
	if summary.CountByUser == nil || summary.TypesCount == nil {
		t.Fatal("distributions must serialize as empty arrays, not null")
	}
}

func TestStatsService_Summary_RepositoryError(t *testing.T) {
	repo := &mockFileRepo{aggErr: errors.New("db down")}
	svc := NewStatsService(repo)

	if _, err := svc.Summary(context.Background()); err == nil {
		t.Fatal("expected aggregation error, got nil")
	}
}
