package repository

import (
	"context"
	"time"
)

// FileRecord 代表数据库中的一条上传文件元数据。
// Username 与 StoragePath 仅服务端可见，不随 API 序列化。
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"file"`
	MimeType    string    `json:"mimetype"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
	SizeBytes   int64     `json:"size"`
	Views       int64     `json:"views"`
	Username    string    `json:"-"`
	StoragePath string    `json:"-"`
}

// ListFilesParams 控制按用户检索文件的范围。
// Limit 为 0 时返回全部记录，分页交给调用方处理。
type ListFilesParams struct {
	Username  string
	MediaOnly bool
	Limit     int
}

// UsageTotals 是一次全量聚合的标量部分。
type UsageTotals struct {
	SizeBytes  int64
	Count      int64
	CountUsers int64
	ViewsCount int64
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

// FileRepository 统一文件元数据持久层接口。
type FileRepository interface {
	Create(ctx context.Context, record *FileRecord) (*FileRecord, error)
	GetByID(ctx context.Context, id string) (*FileRecord, error)
	List(ctx context.Context, params ListFilesParams) ([]FileRecord, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	Totals(ctx context.Context) (*UsageTotals, error)
	CountByUser(ctx context.Context) ([]UserCount, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
}
