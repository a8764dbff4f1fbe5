// Package viewstate 保存文件管理界面的视图状态（选中项、目录、类型过滤、图表弹窗），
// 并把界面操作转发给 service.FileService。
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"filedeck/internal/repository"
	"filedeck/internal/service"
	"filedeck/internal/viewer"

	"go.uber.org/zap"
)

// DefaultDirectory 是文件服务器路径前缀的默认值。
const DefaultDirectory = "/file-server/"

// ErrNoSelection 表示操作需要选中文件但当前没有选中。
var ErrNoSelection = errors.New("viewstate: no file selected")

// Controller 是唯一的视图状态入口，所有方法串行执行。
type Controller struct {
	mu     sync.Mutex
	files  *service.FileService
	logger *zap.Logger

	selectedID   int64
	hasSelection bool
	filter       service.TypeFilter
	directory    string
	chartOpen    bool
}

func New(files *service.FileService, directory string, logger *zap.Logger) *Controller {
	if directory == "" {
		directory = DefaultDirectory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		files:     files,
		logger:    logger,
		filter:    service.FilterAll,
		directory: directory,
	}
}

// Select 切换选中：再次选中同一文件会取消选中，选中其他文件则替换。
// 返回新的选中记录，取消选中时返回 nil。
func (c *Controller) Select(ctx context.Context, id int64) (*repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.files.Get(ctx, id)
	if err != nil {
		if c.hasSelection && c.selectedID == id {
			c.clearLocked()
		}
		return nil, fmt.Errorf("select file %d: %w", id, err)
	}

	if c.hasSelection && c.selectedID == id {
		c.clearLocked()
		return nil, nil
	}

	c.selectedID = id
	c.hasSelection = true
	return rec, nil
}

// ClearSelection 取消选中。
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Selected 返回当前选中的记录；记录已被删除时顺带清除选中状态。
func (c *Controller) Selected(ctx context.Context) (*repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked(ctx)
}

// SetTypeFilter 设置类型过滤器，非法值不改变状态。
func (c *Controller) SetTypeFilter(raw string) (service.TypeFilter, error) {
	filter, err := service.ParseTypeFilter(raw)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
	return filter, nil
}

// SetDirectory 设置当前目录前缀，按字面保存，不做规范化。
func (c *Controller) SetDirectory(path string) error {
	if path == "" {
		return &service.ValidationError{Field: "path", Value: path, Reason: "directory path cannot be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.directory = path
	return nil
}

// Rename 重命名任意文件；成功重命名当前选中文件后会取消选中。
func (c *Controller) Rename(ctx context.Context, id int64, newName string) (*repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renameLocked(ctx, id, newName)
}

// RenameSelected 重命名选中的文件。
func (c *Controller) RenameSelected(ctx context.Context, newName string) (*repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasSelection {
		return nil, ErrNoSelection
	}
	return c.renameLocked(ctx, c.selectedID, newName)
}

// Delete 删除文件；删除选中文件会取消选中。
func (c *Controller) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteLocked(ctx, id)
}

// DeleteSelected 删除选中的文件。
func (c *Controller) DeleteSelected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasSelection {
		return ErrNoSelection
	}
	return c.deleteLocked(ctx, c.selectedID)
}

// ProposeUpload 在当前目录下登记上传，名称冲突时返回待确认的提案。
func (c *Controller) ProposeUpload(ctx context.Context, raw service.RawFile, name string) (*service.UploadResult, error) {
	c.mu.Lock()
	dir := c.directory
	c.mu.Unlock()

	return c.files.ProposeUpload(ctx, service.UploadInput{File: raw, Name: name, Directory: dir})
}

// ConfirmUpload 确认覆盖。
func (c *Controller) ConfirmUpload(ctx context.Context, token string) (*repository.FileRecord, error) {
	return c.files.ConfirmUpload(ctx, token)
}

// CancelUpload 放弃覆盖。
func (c *Controller) CancelUpload(token string) {
	c.files.CancelUpload(token)
}

// OpenChart 打开统计弹窗，不影响选中与过滤状态。
func (c *Controller) OpenChart() {
	c.mu.Lock()
	c.chartOpen = true
	c.mu.Unlock()
}

// CloseChart 关闭统计弹窗。
func (c *Controller) CloseChart() {
	c.mu.Lock()
	c.chartOpen = false
	c.mu.Unlock()
}

// VisibleFiles 先按类型过滤，再按当前目录做字面前缀匹配。
func (c *Controller) VisibleFiles(ctx context.Context) ([]repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked(ctx)
}

// DownloadTarget 返回选中文件，供下载使用。
func (c *Controller) DownloadTarget(ctx context.Context) (*repository.FileRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.selectedLocked(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoSelection
	}
	return rec, nil
}

func (c *Controller) renameLocked(ctx context.Context, id int64, newName string) (*repository.FileRecord, error) {
	rec, err := c.files.Rename(ctx, id, newName)
	if err != nil {
		return nil, err
	}
	if c.hasSelection && c.selectedID == id {
		c.clearLocked()
	}
	return rec, nil
}

func (c *Controller) deleteLocked(ctx context.Context, id int64) error {
	if err := c.files.Remove(ctx, id); err != nil {
		return err
	}
	if c.hasSelection && c.selectedID == id {
		c.clearLocked()
	}
	return nil
}

func (c *Controller) selectedLocked(ctx context.Context) (*repository.FileRecord, error) {
	if !c.hasSelection {
		return nil, nil
	}
	rec, err := c.files.Get(ctx, c.selectedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.logger.Debug("selected file no longer exists", zap.Int64("id", c.selectedID))
			c.clearLocked()
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (c *Controller) visibleLocked(ctx context.Context) ([]repository.FileRecord, error) {
	byType, err := c.files.FilterByType(ctx, c.filter)
	if err != nil {
		return nil, err
	}

	visible := make([]repository.FileRecord, 0, len(byType))
	for _, rec := range byType {
		if strings.HasPrefix(rec.Path, c.directory) {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

func (c *Controller) clearLocked() {
	c.selectedID = 0
	c.hasSelection = false
}

// previewFor 包装 viewer.Describe，方便快照使用。
func previewFor(rec *repository.FileRecord) *viewer.Preview {
	if rec == nil {
		return nil
	}
	p := viewer.Describe(*rec)
	return &p
}
