package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"mediastash/internal/repository"
	"mediastash/internal/storage"
)

type mockFileRepo struct {
	createRecord *repository.FileRecord
	createErr    error

	records map[string]*repository.FileRecord

	listParams repository.ListFilesParams
	listResult []repository.FileRecord
	listErr    error

	deletedID string
	deleteErr error

	viewsIncremented []string

	totals *repository.UsageTotals
	byUser []repository.UserCount
	byType []repository.TypeCount
	aggErr error
}

func (m *mockFileRepo) Create(ctx context.Context, record *repository.FileRecord) (*repository.FileRecord, error) {
	m.createRecord = record
	if m.createErr != nil {
		return nil, m.createErr
	}
	return record, nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, id string) (*repository.FileRecord, error) {
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) List(ctx context.Context, params repository.ListFilesParams) ([]repository.FileRecord, error) {
	m.listParams = params
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *mockFileRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockFileRepo) IncrementViews(ctx context.Context, id string) error {
	m.viewsIncremented = append(m.viewsIncremented, id)
	return nil
}

func (m *mockFileRepo) Totals(ctx context.Context) (*repository.UsageTotals, error) {
	if m.aggErr != nil {
		return nil, m.aggErr
	}
	return m.totals, nil
}

func (m *mockFileRepo) CountByUser(ctx context.Context) ([]repository.UserCount, error) {
	if m.aggErr != nil {
		return nil, m.aggErr
	}
	return m.byUser, nil
}

func (m *mockFileRepo) CountByType(ctx context.Context) ([]repository.TypeCount, error) {
	if m.aggErr != nil {
		return nil, m.aggErr
	}
	return m.byType, nil
}

type mockStorage struct {
	writtenKey  string
	writtenData []byte
	writeErr    error

	readContent string
	readErr     error

	deletedKey string
	deleteErr  error
}

func (s *mockStorage) Write(ctx context.Context, key string, r io.Reader) (storage.Location, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.Location{}, err
	}
	s.writtenKey = key
	s.writtenData = body
	if s.writeErr != nil {
		return storage.Location{}, s.writeErr
	}
	return storage.Location{Path: key}, nil
}

func (s *mockStorage) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return io.NopCloser(strings.NewReader(s.readContent)), nil
}

func (s *mockStorage) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedKey = key
	return nil
}

func TestFileService_RegisterFile_WritesStorageAndRepository(t *testing.T) {
	repo := &mockFileRepo{}
	store := &mockStorage{}
	svc := NewFileService(repo, store, "http://localhost:8080")

	payload := []byte("hello world")
	record, err := svc.RegisterFile(context.Background(), RegisterFileInput{
		Username:  "alice",
		Name:      "greeting.txt",
		MimeType:  "text/plain",
		SizeBytes: int64(len(payload)),
		Reader:    bytes.NewReader(payload),
	})
	if err != nil {
		t.Fatalf("RegisterFile returned error: %v", err)
	}
	if record == nil {
		t.Fatalf("expected record, got nil")
	}
	if repo.createRecord == nil {
		t.Fatalf("repository Create was not called")
	}
	if repo.createRecord.Username != "alice" {
		t.Fatalf("unexpected username: %s", repo.createRecord.Username)
	}
	if store.writtenKey != record.StoragePath {
		t.Fatalf("expected storage key %s, got %s", record.StoragePath, store.writtenKey)
	}
	if string(store.writtenData) != string(payload) {
		t.Fatalf("expected storage data %q, got %q", payload, store.writtenData)
	}
	if !strings.Contains(record.URL, record.ID) {
		t.Fatalf("download url should carry the file id: %s", record.URL)
	}
}

func TestFileService_RegisterFile_Validation(t *testing.T) {
	svc := NewFileService(&mockFileRepo{}, &mockStorage{}, "")
	_, err := svc.RegisterFile(context.Background(), RegisterFileInput{})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestFileService_RegisterFile_StorageError(t *testing.T) {
	repo := &mockFileRepo{}
	store := &mockStorage{writeErr: errors.New("boom")}
	svc := NewFileService(repo, store, "")

	_, err := svc.RegisterFile(context.Background(), RegisterFileInput{
		Username:  "alice",
		Name:      "boom.txt",
		MimeType:  "text/plain",
		SizeBytes: 4,
		Reader:    bytes.NewReader([]byte("data")),
	})
	if err == nil {
		t.Fatal("expected storage error, got nil")
	}
	if repo.createRecord != nil {
		t.Fatal("repository should not be called when storage fails")
	}
}

func TestFileService_ListFiles_ScopedToUser(t *testing.T) {
	repo := &mockFileRepo{
		listResult: []repository.FileRecord{{ID: "1", Name: "a"}},
	}
	svc := NewFileService(repo, nil, "")

	records, err := svc.ListFiles(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListFiles returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if repo.listParams.Username != "alice" {
		t.Fatalf("repository received wrong params: %+v", repo.listParams)
	}
	if repo.listParams.MediaOnly {
		t.Fatal("full listing must not be media-only")
	}
	if repo.listParams.Limit != 0 {
		t.Fatalf("full listing must not be limited, got %d", repo.listParams.Limit)
	}
}

func TestFileService_RecentMedia_FiltersAndLimits(t *testing.T) {
	repo := &mockFileRepo{}
	svc := NewFileService(repo, nil, "")

	if _, err := svc.RecentMedia(context.Background(), "alice", 20); err != nil {
		t.Fatalf("RecentMedia returned error: %v", err)
	}
	if !repo.listParams.MediaOnly {
		t.Fatal("expected media-only listing")
	}
	if repo.listParams.Limit != 20 {
		t.Fatalf("expected limit 20, got %d", repo.listParams.Limit)
	}
}

func TestFileService_DeleteFile_RemovesStorageThenRecord(t *testing.T) {
	repo := &mockFileRepo{
		records: map[string]*repository.FileRecord{
			"f1": {ID: "f1", Username: "alice", StoragePath: "alice/f1"},
		},
	}
	store := &mockStorage{}
	svc := NewFileService(repo, store, "")

	if err := svc.DeleteFile(context.Background(), "alice", "f1"); err != nil {
		t.Fatalf("DeleteFile returned error: %v", err)
	}
	if store.deletedKey != "alice/f1" {
		t.Fatalf("expected storage delete of alice/f1, got %q", store.deletedKey)
	}
	if repo.deletedID != "f1" {
		t.Fatalf("expected record delete of f1, got %q", repo.deletedID)
	}
}

func TestFileService_DeleteFile_NotOwner(t *testing.T) {
	repo := &mockFileRepo{
		records: map[string]*repository.FileRecord{
			"f1": {ID: "f1", Username: "alice", StoragePath: "alice/f1"},
		},
	}
	store := &mockStorage{}
	svc := NewFileService(repo, store, "")

	err := svc.DeleteFile(context.Background(), "mallory", "f1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if store.deletedKey != "" {
		t.Fatal("storage must stay untouched for foreign files")
	}
	if repo.deletedID != "" {
		t.Fatal("record must stay untouched for foreign files")
	}
}

func TestFileService_DeleteFile_NotFound(t *testing.T) {
	svc := NewFileService(&mockFileRepo{}, &mockStorage{}, "")

	err := svc.DeleteFile(context.Background(), "alice", "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileService_OpenDownload_IncrementsViews(t *testing.T) {
	repo := &mockFileRepo{
		records: map[string]*repository.FileRecord{
			"f1": {ID: "f1", Username: "alice", StoragePath: "alice/f1", MimeType: "image/png"},
		},
	}
	store := &mockStorage{readContent: "pixels"}
	svc := NewFileService(repo, store, "")

	record, content, err := svc.OpenDownload(context.Background(), "f1")
	if err != nil {
		t.Fatalf("OpenDownload returned error: %v", err)
	}
	defer content.Close()

	if record.ID != "f1" {
		t.Fatalf("unexpected record: %+v", record)
	}
	body, _ := io.ReadAll(content)
	if string(body) != "pixels" {
		t.Fatalf("unexpected content: %q", body)
	}
	if len(repo.viewsIncremented) != 1 || repo.viewsIncremented[0] != "f1" {
		t.Fatalf("expected views increment for f1, got %v", repo.viewsIncremented)
	}
}
