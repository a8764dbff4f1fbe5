package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"filedeck/internal/repository"
)

// NewFileRepository 返回空的内存实现。
func NewFileRepository() *FileRepository {
	return &FileRepository{byID: make(map[int64]int)}
}

// FileRepository 以切片保存记录以维持插入顺序，byID 存放下标。
// id 由单调递增的计数器分配，删除后不会复用。
type FileRepository struct {
	mu      sync.RWMutex
	records []repository.FileRecord
	byID    map[int64]int
	lastID  int64
}

// Create 插入记录。ID 为 0 时分配新 id；显式 id（种子数据）会推进计数器。
func (r *FileRepository) Create(ctx context.Context, record *repository.FileRecord) (*repository.FileRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("file record is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOfNameLocked(record.Name) >= 0 {
		return nil, fmt.Errorf("name %q: %w", record.Name, repository.ErrConflict)
	}

	rec := *record
	if rec.ID == 0 {
		rec.ID = r.lastID + 1
	} else if _, exists := r.byID[rec.ID]; exists {
		return nil, fmt.Errorf("id %d: %w", rec.ID, repository.ErrConflict)
	}
	if rec.ID > r.lastID {
		r.lastID = rec.ID
	}

	r.byID[rec.ID] = len(r.records)
	r.records = append(r.records, rec)

	out := rec
	return &out, nil
}

// GetByID 通过 id 查询。
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*repository.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.records[idx]
	return &out, nil
}

// GetByName 按名称精确匹配（区分大小写）。
func (r *FileRepository) GetByName(ctx context.Context, name string) (*repository.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOfNameLocked(name)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	out := r.records[idx]
	return &out, nil
}

// List 按插入顺序返回，先过滤类型再检查路径前缀。
func (r *FileRepository) List(ctx context.Context, params repository.ListFilesParams) ([]repository.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]repository.FileRecord, 0, len(r.records))
	for _, rec := range r.records {
		if len(params.Types) > 0 && !containsType(params.Types, rec.Type) {
			continue
		}
		if !strings.HasPrefix(rec.Path, params.PathPrefix) {
			continue
		}
		result = append(result, rec)
	}
	return result, nil
}

// Update 原地替换记录，id 与位置不变。所有写操作在 ctx 已取消时都不修改集合。
func (r *FileRepository) Update(ctx context.Context, record *repository.FileRecord) error {
	if record == nil {
		return fmt.Errorf("file record is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[record.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if other := r.indexOfNameLocked(record.Name); other >= 0 && other != idx {
		return fmt.Errorf("name %q: %w", record.Name, repository.ErrConflict)
	}

	r.records[idx] = *record
	return nil
}

// Delete 硬删除记录并重建下标。
func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}

	r.records = append(r.records[:idx], r.records[idx+1:]...)
	delete(r.byID, id)
	for i := idx; i < len(r.records); i++ {
		r.byID[r.records[i].ID] = i
	}
	return nil
}

// Count 返回当前记录数。
func (r *FileRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func (r *FileRepository) indexOfNameLocked(name string) int {
	for i, rec := range r.records {
		if rec.Name == name {
			return i
		}
	}
	return -1
}

func containsType(types []repository.FileType, t repository.FileType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

var _ repository.FileRepository = (*FileRepository)(nil)
