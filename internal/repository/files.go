package repository

import (
	"context"
	"path"
	"strings"
)

// FileType 是根据扩展名推导出的媒体类别。
type FileType string

const (
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeUnknown  FileType = "unknown"
)

// KnownFileTypes 按图表标签顺序列出可统计的类别，unknown 不在其中。
var KnownFileTypes = []FileType{FileTypeVideo, FileTypeAudio, FileTypeDocument, FileTypeImage}

var extensionTypes = map[string]FileType{
	"mp4":  FileTypeVideo,
	"mov":  FileTypeVideo,
	"avi":  FileTypeVideo,
	"mkv":  FileTypeVideo,
	"mp3":  FileTypeAudio,
	"wav":  FileTypeAudio,
	"m4a":  FileTypeAudio,
	"pdf":  FileTypeDocument,
	"doc":  FileTypeDocument,
	"docx": FileTypeDocument,
	"jpg":  FileTypeImage,
	"jpeg": FileTypeImage,
	"png":  FileTypeImage,
	"heic": FileTypeImage,
}

// DetectFileType 取最后一个 "." 之后的部分（不区分大小写）查表，没有 "." 时整个名字都视为扩展名。
func DetectFileType(fileName string) FileType {
	ext := fileName
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		ext = fileName[idx+1:]
	}
	if t, ok := extensionTypes[strings.ToLower(ext)]; ok {
		return t
	}
	return FileTypeUnknown
}

// Valid 判断是否为五种合法类别之一。
func (t FileType) Valid() bool {
	switch t {
	case FileTypeVideo, FileTypeAudio, FileTypeDocument, FileTypeImage, FileTypeUnknown:
		return true
	default:
		return false
	}
}

// FileRecord 是一个受管文件的元数据，不包含文件内容。
type FileRecord struct {
	ID   int64    `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Type FileType `json:"type" yaml:"type"`
	Path string   `json:"path" yaml:"path"`
}

// Base 返回 path 的最后一段，用于下载时的文件名。
func (r FileRecord) Base() string {
	return path.Base(r.Path)
}

// ListFilesParams 描述列表过滤条件；先按类型过滤，再做路径前缀匹配。
type ListFilesParams struct {
	Types      []FileType
	PathPrefix string
}

// FileRepository 统一文件元数据存储接口。List 必须保持插入顺序。
type FileRepository interface {
	Create(ctx context.Context, record *FileRecord) (*FileRecord, error)
	GetByID(ctx context.Context, id int64) (*FileRecord, error)
	GetByName(ctx context.Context, name string) (*FileRecord, error)
	List(ctx context.Context, params ListFilesParams) ([]FileRecord, error)
	Update(ctx context.Context, record *FileRecord) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// SeedSource 提供启动时一次性加载的初始文件列表。
type SeedSource interface {
	LoadSeed(ctx context.Context) ([]FileRecord, error)
}
