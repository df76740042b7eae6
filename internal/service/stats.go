package service

import (
	"context"
	"errors"

	"mediastash/internal/format"
	"mediastash/internal/repository"
)

// StatsSummary 是每次请求时全量重算的使用情况快照。
type StatsSummary struct {
	Size        string                 `json:"size"`
	SizeBytes   int64                  `json:"size_num"`
	Count       int64                  `json:"count"`
	CountUsers  int64                  `json:"count_users"`
	ViewsCount  int64                  `json:"views_count"`
	CountByUser []repository.UserCount `json:"count_by_user"`
	TypesCount  []repository.TypeCount `json:"types_count"`
}

// StatsService 负责组装聚合统计。
type StatsService struct {
	repo repository.FileRepository
}

func NewStatsService(repo repository.FileRepository) *StatsService {
	return &StatsService{repo: repo}
}

// Summary 依次取标量聚合与两组分布，拼成完整快照。
// Size 字段在服务端格式化，客户端直接展示。
func (s *StatsService) Summary(ctx context.Context) (*StatsSummary, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("stats service not initialized")
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	byUser, err := s.repo.CountByUser(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	if byUser == nil {
		byUser = []repository.UserCount{}
	}
	if byType == nil {
		byType = []repository.TypeCount{}
	}

	return &StatsSummary{
		Size:        format.ByteSize(float64(totals.SizeBytes)),
		SizeBytes:   totals.SizeBytes,
		Count:       totals.Count,
		CountUsers:  totals.CountUsers,
		ViewsCount:  totals.ViewsCount,
		CountByUser: byUser,
		TypesCount:  byType,
	}, nil
}
