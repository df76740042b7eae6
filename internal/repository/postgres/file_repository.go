package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mediastash/internal/repository"
)

// NewFileRepository 返回基于 *sql.DB 的 Postgres 实现。
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

// FileRepository 实现 repository.FileRepository。
type FileRepository struct {
	db *sql.DB
}

var fileSelectColumns = []string{
	"id",
	"username",
	"file_name",
	"mime_type",
	"size_bytes",
	"storage_path",
	"url",
	"views",
	"created_at",
}

var fileInsertColumns = []string{
	"id",
	"username",
	"file_name",
	"mime_type",
	"size_bytes",
	"storage_path",
	"url",
}

// mediaTypePrefixes 界定 recent?filter=media 命中的 MIME 一级类型。
var mediaTypePrefixes = []string{"image/%", "video/%", "audio/%"}

// Create 插入文件记录并返回数据库生成字段（如时间戳）。
func (r *FileRepository) Create(ctx context.Context, record *repository.FileRecord) (*repository.FileRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("file record is nil")
	}

	placeholders := make([]string, len(fileInsertColumns))
	for i := range fileInsertColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO files (%s)
	VALUES (%s)
	RETURNING %s`,
		strings.Join(fileInsertColumns, ","),
		strings.Join(placeholders, ","),
		strings.Join(fileSelectColumns, ","),
	)

	row := r.db.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.Username,
		record.Name,
		record.MimeType,
		record.SizeBytes,
		record.StoragePath,
		record.URL,
	)

	return scanFileRecord(row)
}

// GetByID 通过主键查询文件记录。
func (r *FileRepository) GetByID(ctx context.Context, id string) (*repository.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, strings.Join(fileSelectColumns, ","))
	row := r.db.QueryRowContext(ctx, query, id)
	file, err := scanFileRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// List 按用户名检索，可选仅媒体类型，按创建时间倒序。
func (r *FileRepository) List(ctx context.Context, params repository.ListFilesParams) ([]repository.FileRecord, error) {
	args := []any{params.Username}
	whereClause := "WHERE username = $1"

	if params.MediaOnly {
		likes := make([]string, len(mediaTypePrefixes))
		for i, prefix := range mediaTypePrefixes {
			args = append(args, prefix)
			likes[i] = fmt.Sprintf("mime_type LIKE $%d", len(args))
		}
		whereClause += " AND (" + strings.Join(likes, " OR ") + ")"
	}

	tail := "ORDER BY created_at DESC"
	if params.Limit > 0 {
		args = append(args, params.Limit)
		tail += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	query := fmt.Sprintf(`SELECT %s FROM files %s %s`, strings.Join(fileSelectColumns, ","), whereClause, tail)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []repository.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Delete 物理删除文件记录。
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// IncrementViews 浏览计数加一。
func (r *FileRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Totals 返回全库标量聚合。空表时各项为 0。
func (r *FileRepository) Totals(ctx context.Context) (*repository.UsageTotals, error) {
	query := `SELECT
		COALESCE(SUM(size_bytes), 0),
		COUNT(*),
		COUNT(DISTINCT username),
		COALESCE(SUM(views), 0)
	FROM files`

	var totals repository.UsageTotals
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&totals.SizeBytes,
		&totals.Count,
		&totals.CountUsers,
		&totals.ViewsCount,
	); err != nil {
		return nil, err
	}

	return &totals, nil
}

// CountByUser 按用户聚合上传数量，数量多者在前。
func (r *FileRepository) CountByUser(ctx context.Context) ([]repository.UserCount, error) {
	query := `SELECT username, COUNT(*) FROM files
	GROUP BY username
	ORDER BY COUNT(*) DESC, username ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []repository.UserCount
	for rows.Next() {
		var item repository.UserCount
		if err := rows.Scan(&item.Username, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CountByType 按 MIME 类型聚合上传数量，数量多者在前。
func (r *FileRepository) CountByType(ctx context.Context) ([]repository.TypeCount, error) {
	query := `SELECT mime_type, COUNT(*) FROM files
	GROUP BY mime_type
	ORDER BY COUNT(*) DESC, mime_type ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []repository.TypeCount
	for rows.Next() {
		var item repository.TypeCount
		if err := rows.Scan(&item.MimeType, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(rs rowScanner) (*repository.FileRecord, error) {
	var rec repository.FileRecord

	if err := rs.Scan(
		&rec.ID,
		&rec.Username,
		&rec.Name,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.StoragePath,
		&rec.URL,
		&rec.Views,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &rec, nil
}
