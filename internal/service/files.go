package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"mediastash/internal/repository"
	"mediastash/internal/storage"

	"github.com/google/uuid"
)

// ErrForbidden 表示调用者不是目标文件的属主。
var ErrForbidden = errors.New("service: not the file owner")

// FileService 封装文件元数据的业务流程。
type FileService struct {
	repo    repository.FileRepository
	store   storage.Storage
	baseURL string
}

func NewFileService(repo repository.FileRepository, store storage.Storage, baseURL string) *FileService {
	return &FileService{repo: repo, store: store, baseURL: baseURL}
}

// RegisterFileInput 描述创建文件记录所需的信息。
type RegisterFileInput struct {
	Username  string
	Name      string
	MimeType  string
	SizeBytes int64
	Reader    io.Reader
}

// RegisterFile 写入对象存储并登记元数据。记录的下载地址
// 指向本服务的 download 端点。
func (s *FileService) RegisterFile(ctx context.Context, input RegisterFileInput) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	record := &repository.FileRecord{
		ID:          id,
		Username:    input.Username,
		Name:        input.Name,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
		StoragePath: path.Join(input.Username, id),
		URL:         fmt.Sprintf("%s/api/user/files/%s/download", s.baseURL, id),
	}

	if s.store != nil && input.Reader != nil {
		if _, err := s.store.Write(ctx, record.StoragePath, input.Reader); err != nil {
			return nil, fmt.Errorf("write storage: %w", err)
		}
	}

	return s.repo.Create(ctx, record)
}

// ListFiles 返回指定用户的全部文件，最新在前。分页由客户端完成。
func (s *FileService) ListFiles(ctx context.Context, username string) ([]repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.List(ctx, repository.ListFilesParams{Username: username})
}

// RecentMedia 返回指定用户最近上传的媒体文件（image/video/audio）。
func (s *FileService) RecentMedia(ctx context.Context, username string, limit int) ([]repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.List(ctx, repository.ListFilesParams{
		Username:  username,
		MediaOnly: true,
		Limit:     limit,
	})
}

// Recent 返回指定用户最近上传的文件，不限类型。
func (s *FileService) Recent(ctx context.Context, username string, limit int) ([]repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.List(ctx, repository.ListFilesParams{
		Username: username,
		Limit:    limit,
	})
}

// GetFile 返回单条文件元数据。
func (s *FileService) GetFile(ctx context.Context, id string) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.GetByID(ctx, id)
}

// OpenDownload 打开文件内容并累加浏览计数。
func (s *FileService) OpenDownload(ctx context.Context, id string) (*repository.FileRecord, io.ReadCloser, error) {
	if s == nil || s.repo == nil {
		return nil, nil, errors.New("file service not initialized")
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if s.store == nil {
		return nil, nil, errors.New("storage not configured")
	}

	content, err := s.store.Read(ctx, record.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}

	// 计数失败不阻断下载
	_ = s.repo.IncrementViews(ctx, id)

	return record, content, nil
}

// DeleteFile 校验属主后删除对象与元数据。先删对象后删记录，
// 失败时最多留下一条指向空对象的记录。
func (s *FileService) DeleteFile(ctx context.Context, username, id string) error {
	if s == nil || s.repo == nil {
		return errors.New("file service not initialized")
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Username != username {
		return ErrForbidden
	}

	if s.store != nil && record.StoragePath != "" {
		if err := s.store.Delete(ctx, record.StoragePath); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}

func validateRegisterInput(input RegisterFileInput) error {
	switch {
	case input.Username == "":
		return fmt.Errorf("username is required")
	case input.Name == "":
		return fmt.Errorf("file name is required")
	case input.MimeType == "":
		return fmt.Errorf("mimetype is required")
	case input.SizeBytes <= 0:
		return fmt.Errorf("size must be positive")
	default:
		return nil
	}
}
