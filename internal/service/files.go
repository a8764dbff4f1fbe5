package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"filedeck/internal/repository"

	"go.uber.org/zap"
)

const defaultProposalTTL = 10 * time.Minute

// FileService 封装文件集合的业务规则：命名校验、去重、两阶段覆盖上传。
// 所有变更在同一把锁内完成校验与写入，失败时不会留下部分修改。
type FileService struct {
	mu          sync.Mutex
	repo        repository.FileRepository
	logger      *zap.Logger
	proposals   map[string]*pendingUpload
	proposalTTL time.Duration
	now         func() time.Time

	subsMu sync.RWMutex
	subs   []subscriber
	nextID int
}

func NewFileService(repo repository.FileRepository, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		repo:        repo,
		logger:      logger,
		proposals:   make(map[string]*pendingUpload),
		proposalTTL: defaultProposalTTL,
		now:         time.Now,
	}
}

// SetProposalTTL 调整待确认上传的有效期，非正值忽略。
func (s *FileService) SetProposalTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.proposalTTL = ttl
	s.mu.Unlock()
}

// RawFile 是上传来源，只需要原始文件名用于推导类型和路径。
type RawFile struct {
	Name string `json:"name"`
}

// UploadInput 描述一次上传登记。
type UploadInput struct {
	File      RawFile
	Name      string
	Directory string
}

// UploadResult 要么是已写入的记录，要么是等待调用方确认覆盖的提案。
type UploadResult struct {
	Record            *repository.FileRecord `json:"record,omitempty"`
	NeedsConfirmation bool                   `json:"needs_confirmation"`
	Token             string                 `json:"token,omitempty"`
	Existing          *repository.FileRecord `json:"existing,omitempty"`
	ExpiresAt         *time.Time             `json:"expires_at,omitempty"`
}

func validateUploadInput(input UploadInput) error {
	if input.File.Name == "" {
		return &ValidationError{Field: "file_name", Value: input.File.Name, Reason: "raw file name is required"}
	}
	return ValidateName(input.Name)
}

// Seed 在启动时载入初始记录，保留其 id；名称非法或重复时整体失败。
func (s *FileService) Seed(ctx context.Context, records []repository.FileRecord) error {
	if s == nil || s.repo == nil {
		return errors.New("file service not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seenNames := make(map[string]int64, len(records))
	seenIDs := make(map[int64]struct{}, len(records))
	for _, rec := range records {
		if err := ValidateName(rec.Name); err != nil {
			return fmt.Errorf("seed file %d: %w", rec.ID, err)
		}
		if ownerID, dup := seenNames[rec.Name]; dup {
			return fmt.Errorf("seed file %d: %w", rec.ID, &DuplicateNameError{Name: rec.Name, ExistingID: ownerID})
		}
		if rec.ID != 0 {
			if _, dup := seenIDs[rec.ID]; dup {
				return fmt.Errorf("seed file %q: id %d: %w", rec.Name, rec.ID, repository.ErrConflict)
			}
			seenIDs[rec.ID] = struct{}{}
		}
		seenNames[rec.Name] = rec.ID
	}

	// 与已有记录冲突同样在写入前拒绝
	for _, rec := range records {
		if existing, err := s.repo.GetByName(ctx, rec.Name); err == nil {
			return fmt.Errorf("seed file %d: %w", rec.ID, &DuplicateNameError{Name: rec.Name, ExistingID: existing.ID})
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup name: %w", err)
		}
		if rec.ID == 0 {
			continue
		}
		if _, err := s.repo.GetByID(ctx, rec.ID); err == nil {
			return fmt.Errorf("seed file %q: id %d: %w", rec.Name, rec.ID, repository.ErrConflict)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup id: %w", err)
		}
	}

	for _, rec := range records {
		rec := rec
		if !rec.Type.Valid() {
			rec.Type = repository.DetectFileType(rec.Name)
		}
		if _, err := s.repo.Create(ctx, &rec); err != nil {
			return fmt.Errorf("seed file %q: %w", rec.Name, err)
		}
	}

	s.logger.Info("seed loaded", zap.Int("files", len(records)))
	s.publishLocked(ctx)
	return nil
}

// ProposeUpload 是两阶段上传的第一步。名称未被占用时直接写入；
// 已被占用时不修改任何状态，返回需要确认的令牌。
func (s *FileService) ProposeUpload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	if err := validateUploadInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneProposalsLocked()

	existing, err := s.repo.GetByName(ctx, input.Name)
	switch {
	case err == nil:
		p := s.addProposalLocked(input, existing.ID)
		s.logger.Info("upload needs confirmation",
			zap.String("name", input.Name),
			zap.Int64("existing_id", existing.ID),
		)
		expires := p.expiresAt
		return &UploadResult{
			NeedsConfirmation: true,
			Token:             p.token,
			Existing:          existing,
			ExpiresAt:         &expires,
		}, nil
	case errors.Is(err, repository.ErrNotFound):
		record, err := s.insertLocked(ctx, input)
		if err != nil {
			return nil, err
		}
		return &UploadResult{Record: record}, nil
	default:
		return nil, fmt.Errorf("lookup name: %w", err)
	}
}

// ConfirmUpload 是第二步：覆盖当前占用该名称的记录（保留 id）。
// 若该记录在此期间已被删除或改名，则作为新记录插入。
func (s *FileService) ConfirmUpload(ctx context.Context, token string) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneProposalsLocked()

	p, ok := s.proposals[token]
	if !ok {
		return nil, ErrProposalNotFound
	}
	delete(s.proposals, token)

	existing, err := s.repo.GetByName(ctx, p.input.Name)
	switch {
	case err == nil:
		return s.replaceLocked(ctx, existing, p.input)
	case errors.Is(err, repository.ErrNotFound):
		return s.insertLocked(ctx, p.input)
	default:
		return nil, fmt.Errorf("lookup name: %w", err)
	}
}

// CancelUpload 丢弃待确认的上传；令牌不存在时什么也不做。
func (s *FileService) CancelUpload(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[token]; ok {
		delete(s.proposals, token)
		s.logger.Debug("upload proposal cancelled", zap.String("token", token))
	}
}

// Upload 是单步版本：overwrite 为 false 时名称冲突返回 DuplicateNameError。
func (s *FileService) Upload(ctx context.Context, input UploadInput, overwrite bool) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	if err := validateUploadInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.GetByName(ctx, input.Name)
	switch {
	case err == nil:
		if !overwrite {
			return nil, &DuplicateNameError{Name: input.Name, ExistingID: existing.ID}
		}
		return s.replaceLocked(ctx, existing, input)
	case errors.Is(err, repository.ErrNotFound):
		return s.insertLocked(ctx, input)
	default:
		return nil, fmt.Errorf("lookup name: %w", err)
	}
}

// Rename 只修改 name。改成自己当前的名字视为成功。
func (s *FileService) Rename(ctx context.Context, id int64, newName string) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rename file %d: %w", id, err)
	}

	owner, err := s.repo.GetByName(ctx, newName)
	switch {
	case err == nil && owner.ID != id:
		return nil, &DuplicateNameError{Name: newName, ExistingID: owner.ID}
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup name: %w", err)
	}

	if current.Name == newName {
		return current, nil
	}

	oldName := current.Name
	current.Name = newName
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update file %d: %w", id, err)
	}

	s.logger.Info("file renamed",
		zap.Int64("id", id),
		zap.String("from", oldName),
		zap.String("to", newName),
	)
	s.publishLocked(ctx)
	return current, nil
}

// Remove 删除记录；id 不存在时为空操作。
func (s *FileService) Remove(ctx context.Context, id int64) error {
	if s == nil || s.repo == nil {
		return errors.New("file service not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("remove of missing file ignored", zap.Int64("id", id))
			return nil
		}
		return fmt.Errorf("delete file %d: %w", id, err)
	}

	s.logger.Info("file removed", zap.Int64("id", id))
	s.publishLocked(ctx)
	return nil
}

// Get 返回单条记录。
func (s *FileService) Get(ctx context.Context, id int64) (*repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.GetByID(ctx, id)
}

// List 按插入顺序返回全部记录。
func (s *FileService) List(ctx context.Context) ([]repository.FileRecord, error) {
	return s.FilterByType(ctx, FilterAll)
}

// FilterByType 返回类型匹配的记录，all 返回全部，顺序稳定。
func (s *FileService) FilterByType(ctx context.Context, filter TypeFilter) ([]repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.List(ctx, filter.params())
}

// FilterByPath 返回 path 以 prefix 开头的记录，不做任何路径规范化。
func (s *FileService) FilterByPath(ctx context.Context, prefix string) ([]repository.FileRecord, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("file service not initialized")
	}
	return s.repo.List(ctx, repository.ListFilesParams{PathPrefix: prefix})
}

func (s *FileService) insertLocked(ctx context.Context, input UploadInput) (*repository.FileRecord, error) {
	record, err := s.repo.Create(ctx, &repository.FileRecord{
		Name: input.Name,
		Type: repository.DetectFileType(input.File.Name),
		Path: input.Directory + input.File.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	s.logger.Info("file uploaded",
		zap.Int64("id", record.ID),
		zap.String("name", record.Name),
		zap.String("type", string(record.Type)),
		zap.String("path", record.Path),
	)
	s.publishLocked(ctx)
	return record, nil
}

func (s *FileService) replaceLocked(ctx context.Context, existing *repository.FileRecord, input UploadInput) (*repository.FileRecord, error) {
	updated := *existing
	updated.Name = input.Name
	updated.Type = repository.DetectFileType(input.File.Name)
	updated.Path = input.Directory + input.File.Name

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("replace file %d: %w", existing.ID, err)
	}

	s.logger.Info("file replaced",
		zap.Int64("id", updated.ID),
		zap.String("name", updated.Name),
		zap.String("type", string(updated.Type)),
		zap.String("path", updated.Path),
	)
	s.publishLocked(ctx)
	return &updated, nil
}
