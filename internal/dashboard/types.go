package dashboard

import (
	"context"
	"fmt"
	"time"
)

// FileRecord 是 API 返回的单条上传文件元数据。
type FileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"file"`
	MimeType  string    `json:"mimetype"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size"`
	Views     int64     `json:"views"`
}

// UserCount 按用户名聚合的上传数量。
type UserCount struct {
	Username string `json:"username"`
	Count    int64  `json:"count"`
}

// TypeCount 按 MIME 类型聚合的上传数量。
type TypeCount struct {
	MimeType string `json:"mimetype"`
	Count    int64  `json:"count"`
}

// StatsSummary 是服务端每次请求重算的使用情况快照，客户端只读。
type StatsSummary struct {
	Size        string      `json:"size"`
	SizeBytes   int64       `json:"size_num"`
	Count       int64       `json:"count"`
	CountUsers  int64       `json:"count_users"`
	ViewsCount  int64       `json:"views_count"`
	CountByUser []UserCount `json:"count_by_user"`
	TypesCount  []TypeCount `json:"types_count"`
}

// ViewsDisplay 返回 "总浏览数 (平均每件)" 形式的展示值。
// 没有任何文件时平均值按 0 处理，避免除零。
func (s *StatsSummary) ViewsDisplay() string {
	if s == nil {
		return "0 (0)"
	}
	var perItem int64
	if s.Count > 0 {
		perItem = s.ViewsCount / s.Count
	}
	return fmt.Sprintf("%d (%d)", s.ViewsCount, perItem)
}

// Fetcher 是仪表盘需要的最小 API 能力。
type Fetcher interface {
	Files(ctx context.Context) ([]FileRecord, error)
	Recent(ctx context.Context) ([]FileRecord, error)
	Stats(ctx context.Context) (*StatsSummary, error)
	Delete(ctx context.Context, id string) error
}
