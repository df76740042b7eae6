package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"mediastash/internal/middleware"
	"mediastash/internal/repository"
	"mediastash/internal/service"

	"github.com/go-chi/chi/v5"
)

// FileHandler 提供文件相关的 HTTP 端点，均以当前会话用户为范围。
type FileHandler struct {
	service     *service.FileService
	recentLimit int
}

func NewFileHandler(s *service.FileService, recentLimit int) *FileHandler {
	if recentLimit <= 0 {
		recentLimit = 20
	}
	return &FileHandler{service: s, recentLimit: recentLimit}
}

func (h *FileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/files", h.ListFiles)
		r.Post("/files", h.UploadFile)
		r.Delete("/files", h.DeleteFile)
		r.Get("/files/{id}/download", h.DownloadFile)
		r.Get("/recent", h.RecentFiles)
	})
}

type errorEnvelope struct {
	Error string `json:"error"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// deleteResponse 成功时序列化为空对象，客户端据此判断是否刷新。
type deleteResponse struct {
	Error string `json:"error,omitempty"`
}

const (
	maxUploadSizeBytes    int64 = 100 * 1024 * 1024 // 100MB
	multipartMemoryBudget int64 = 16 * 1024 * 1024
)

// ListFiles 返回当前用户的全部文件，最新在前。分页由客户端完成。
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	username := middleware.GetUsername(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}

	files, err := h.service.ListFiles(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []repository.FileRecord{}
	}

	writeJSON(w, http.StatusOK, files)
}

// RecentFiles 返回当前用户最近的上传。filter=media 时只含媒体类型。
func (h *FileHandler) RecentFiles(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	username := middleware.GetUsername(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}

	var (
		files []repository.FileRecord
		err   error
	)
	if r.URL.Query().Get("filter") == "media" {
		files, err = h.service.RecentMedia(r.Context(), username, h.recentLimit)
	} else {
		files, err = h.service.Recent(r.Context(), username, h.recentLimit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []repository.FileRecord{}
	}

	writeJSON(w, http.StatusOK, files)
}

// UploadFile 接受 multipart/form-data 上传并登记文件元数据。
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return
	}

	username := middleware.GetUsername(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSizeBytes+multipartMemoryBudget)
	defer r.Body.Close()

	if err := r.ParseMultipartForm(multipartMemoryBudget); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	sizeBytes, err := determineFileSize(file, header)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sizeBytes <= 0 {
		writeError(w, http.StatusBadRequest, "file must not be empty")
		return
	}
	if sizeBytes > maxUploadSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds size limit (100MB)")
		return
	}

	mimeType, err := resolveMimeType(header, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := rewindFile(file); err != nil {
		writeError(w, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}

	name := header.Filename
	if override := strings.TrimSpace(r.FormValue("name")); override != "" {
		name = override
	}

	record, err := h.service.RegisterFile(r.Context(), service.RegisterFileInput{
		Username:  username,
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: sizeBytes,
		Reader:    file,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.RecordUpload()
	writeJSON(w, http.StatusCreated, record)
}

// DownloadFile 返回文件内容以供下载，并累加浏览计数。
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "file id is required")
		return
	}

	file, content, err := h.service.OpenDownload(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer content.Close()

	middleware.RecordDownload()
	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))

	if _, err := io.Copy(w, content); err != nil {
		// 客户端可能已断开，无法再写入错误响应
		return
	}
}

// DeleteFile 按请求体中的 id 删除当前用户的文件。
// 响应固定为 {"error": ...} 形态，成功时 error 省略。
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		writeError(w, http.StatusInternalServerError, "handler not initialized")
		return
	}

	username := middleware.GetUsername(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "no session user")
		return
	}

	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, deleteResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeJSON(w, http.StatusBadRequest, deleteResponse{Error: "file id is required"})
		return
	}

	if err := h.service.DeleteFile(r.Context(), username, req.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeJSON(w, http.StatusNotFound, deleteResponse{Error: "file not found"})
		case errors.Is(err, service.ErrForbidden):
			writeJSON(w, http.StatusForbidden, deleteResponse{Error: "not the file owner"})
		default:
			writeJSON(w, http.StatusInternalServerError, deleteResponse{Error: "delete failed"})
		}
		return
	}

	middleware.RecordDelete()
	writeJSON(w, http.StatusOK, deleteResponse{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message})
}

func determineFileSize(file multipart.File, header *multipart.FileHeader) (int64, error) {
	if header != nil && header.Size > 0 {
		return header.Size, nil
	}

	seeker, ok := file.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("cannot determine file size")
	}

	size, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure file: %w", err)
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind file: %w", err)
	}

	return size, nil
}

func resolveMimeType(header *multipart.FileHeader, file multipart.File) (string, error) {
	if header != nil {
		if value := header.Header.Get("Content-Type"); value != "" {
			return value, nil
		}
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("detect mime: %w", err)
	}

	if err := rewindFile(file); err != nil {
		return "", err
	}
	if n == 0 {
		return "application/octet-stream", nil
	}
	return http.DetectContentType(buf[:n]), nil
}

func rewindFile(file multipart.File) error {
	seeker, ok := file.(io.Seeker)
	if !ok {
		return fmt.Errorf("upload reader is not seekable")
	}
	_, err := seeker.Seek(0, io.SeekStart)
	return err
}
