package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediastash/internal/middleware"
	"mediastash/internal/repository"
	"mediastash/internal/service"
	"mediastash/internal/storage"
)

type handlerRepo struct {
	createRecord *repository.FileRecord
	records      map[string]*repository.FileRecord
	listParams   repository.ListFilesParams
	listResult   []repository.FileRecord
	deletedID    string

	totals *repository.UsageTotals
	byUser []repository.UserCount
	byType []repository.TypeCount
}

func (m *handlerRepo) Create(ctx context.Context, record *repository.FileRecord) (*repository.FileRecord, error) {
	m.createRecord = record
	return record, nil
}

func (m *handlerRepo) GetByID(ctx context.Context, id string) (*repository.FileRecord, error) {
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func (m *handlerRepo) List(ctx context.Context, params repository.ListFilesParams) ([]repository.FileRecord, error) {
	m.listParams = params
	return m.listResult, nil
}

func (m *handlerRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *handlerRepo) IncrementViews(ctx context.Context, id string) error {
	return nil
}

func (m *handlerRepo) Totals(ctx context.Context) (*repository.UsageTotals, error) {
	if m.totals == nil {
		return &repository.UsageTotals{}, nil
	}
	return m.totals, nil
}

func (m *handlerRepo) CountByUser(ctx context.Context) ([]repository.UserCount, error) {
	return m.byUser, nil
}

func (m *handlerRepo) CountByType(ctx context.Context) ([]repository.TypeCount, error) {
	return m.byType, nil
}

type handlerStorage struct {
	writes  int
	deletes int
}

func (s *handlerStorage) Write(ctx context.Context, key string, r io.Reader) (storage.Location, error) {
	_, _ = io.ReadAll(r)
	s.writes++
	return storage.Location{Path: key}, nil
}

func (s *handlerStorage) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte("mock content"))), nil
}

func (s *handlerStorage) Delete(ctx context.Context, key string) error {
	s.deletes++
	return nil
}

func withUser(req *http.Request, username string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UsernameContextKey{}, username)
	return req.WithContext(ctx)
}

func TestFileHandler_ListFiles(t *testing.T) {
	repo := &handlerRepo{
		listResult: []repository.FileRecord{{
			ID:        "1",
			Name:      "a.png",
			MimeType:  "image/png",
			CreatedAt: time.Now(),
		}},
	}
	svc := service.NewFileService(repo, nil, "")
	handler := NewFileHandler(svc, 20)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/files", nil), "alice")
	rec := httptest.NewRecorder()

	handler.ListFiles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.listParams.Username != "alice" {
		t.Fatalf("listing not scoped to session user: %+v", repo.listParams)
	}

	var files []repository.FileRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.png" {
		t.Fatalf("unexpected payload: %+v", files)
	}
}

func TestFileHandler_ListFiles_NoSession(t *testing.T) {
	svc := service.NewFileService(&handlerRepo{}, nil, "")
	handler := NewFileHandler(svc, 20)

	req := httptest.NewRequest(http.MethodGet, "/api/user/files", nil)
	rec := httptest.NewRecorder()

	handler.ListFiles(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestFileHandler_ListFiles_EmptyIsArray(t *testing.T) {
	svc := service.NewFileService(&handlerRepo{}, nil, "")
	handler := NewFileHandler(svc, 20)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/files", nil), "alice")
	rec := httptest.NewRecorder()

	handler.ListFiles(rec, req)

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("empty listing must serialize as [], got %q", got)
	}
}

func TestFileHandler_RecentFiles_MediaFilter(t *testing.T) {
	repo := &handlerRepo{}
	svc := service.NewFileService(repo, nil, "")
	handler := NewFileHandler(svc, 20)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/recent?filter=media", nil), "alice")
	rec := httptest.NewRecorder()

	handler.RecentFiles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !repo.listParams.MediaOnly {
		t.Fatal("filter=media must request media-only records")
	}
	if repo.listParams.Limit != 20 {
		t.Fatalf("recent listing must be limited, got %d", repo.listParams.Limit)
	}
}

func TestFileHandler_RecentFiles_NoFilter(t *testing.T) {
	repo := &handlerRepo{}
	svc := service.NewFileService(repo, nil, "")
	handler := NewFileHandler(svc, 20)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/recent", nil), "alice")
	rec := httptest.NewRecorder()

	handler.RecentFiles(rec, req)

	if repo.listParams.MediaOnly {
		t.Fatal("plain recent listing must not be media-only")
	}
}

func TestFileHandler_UploadFile(t *testing.T) {
	repo := &handlerRepo{}
	store := &handlerStorage{}
	svc := service.NewFileService(repo, store, "http://localhost:8080")
	handler := NewFileHandler(svc, 20)

	req := withUser(newMultipartRequest(t, "file", "hello.txt", []byte("hello world")), "alice")
	rec := httptest.NewRecorder()

	handler.UploadFile(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if repo.createRecord == nil {
		t.Fatal("expected repository Create to be invoked")
	}
	if repo.createRecord.Name != "hello.txt" {
		t.Fatalf("unexpected file name: %s", repo.createRecord.Name)
	}
	if repo.createRecord.SizeBytes != 11 {
		t.Fatalf("unexpected size recorded: %d", repo.createRecord.SizeBytes)
	}
	if repo.createRecord.Username != "alice" {
		t.Fatalf("upload not attributed to session user: %s", repo.createRecord.Username)
	}
	if store.writes != 1 {
		t.Fatalf("expected storage write once, got %d", store.writes)
	}
}

func TestFileHandler_DeleteFile(t *testing.T) {
	repo := &handlerRepo{
		records: map[string]*repository.FileRecord{
			"f1": {ID: "f1", Username: "alice", StoragePath: "alice/f1"},
		},
	}
	store := &handlerStorage{}
	svc := service.NewFileService(repo, store, "")
	handler := NewFileHandler(svc, 20)

	body := strings.NewReader(`{"id":"f1"}`)
	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/user/files", body), "alice")
	rec := httptest.NewRecorder()

	handler.DeleteFile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
		t.Fatalf("successful delete must respond with {}, got %q", got)
	}
	if repo.deletedID != "f1" {
		t.Fatalf("expected record delete of f1, got %q", repo.deletedID)
	}
	if store.deletes != 1 {
		t.Fatalf("expected storage delete once, got %d", store.deletes)
	}
}

func TestFileHandler_DeleteFile_NotOwner(t *testing.T) {
	repo := &handlerRepo{
		records: map[string]*repository.FileRecord{
			"f1": {ID: "f1", Username: "alice", StoragePath: "alice/f1"},
		},
	}
	svc := service.NewFileService(repo, &handlerStorage{}, "")
	handler := NewFileHandler(svc, 20)

	body := strings.NewReader(`{"id":"f1"}`)
	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/user/files", body), "mallory")
	rec := httptest.NewRecorder()

	handler.DeleteFile(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("failed delete must report an error message")
	}
	if repo.deletedID != "" {
		t.Fatal("record must stay untouched for foreign files")
	}
}

func TestFileHandler_DeleteFile_MissingID(t *testing.T) {
	svc := service.NewFileService(&handlerRepo{}, nil, "")
	handler := NewFileHandler(svc, 20)

	body := strings.NewReader(`{"id":""}`)
	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/user/files", body), "alice")
	rec := httptest.NewRecorder()

	handler.DeleteFile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func newMultipartRequest(t *testing.T, fieldName, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/user/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
