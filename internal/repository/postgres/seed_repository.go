package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"filedeck/internal/repository"
)

// NewSeedRepository 返回基于 *sql.DB 的种子数据读取实现。
func NewSeedRepository(db *sql.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

// SeedRepository 只读访问 seed_files 表，实现 repository.SeedSource。
type SeedRepository struct {
	db *sql.DB
}

var seedSelectColumns = []string{
	"id",
	"name",
	"type",
	"path",
}

// LoadSeed 按 id 升序返回全部种子记录。
func (r *SeedRepository) LoadSeed(ctx context.Context) ([]repository.FileRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("seed repository not initialized")
	}

	query := fmt.Sprintf(`SELECT %s FROM seed_files ORDER BY id ASC`, strings.Join(seedSelectColumns, ","))
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select seed_files: %w", err)
	}
	defer rows.Close()

	var result []repository.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seed_files: %w", err)
		}
		result = append(result, *rec)
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
	var (
		rec      repository.FileRecord
		fileType sql.NullString
	)

	if err := rs.Scan(
		&rec.ID,
		&rec.Name,
		&fileType,
		&rec.Path,
	); err != nil {
		return nil, err
	}

	// 空值或非法类型交给上层按名称推导
	if fileType.Valid {
		rec.Type = repository.FileType(strings.ToLower(strings.TrimSpace(fileType.String)))
	}

	return &rec, nil
}

var _ repository.SeedSource = (*SeedRepository)(nil)
