// Package viewer 把文件类型映射到外部预览组件。
// 预览组件只拿到 path，自行负责加载与错误展示，不能修改文件集合。
package viewer

import (
	"filedeck/internal/repository"

	"github.com/go-enry/go-enry/v2"
)

// Kind 是预览组件的种类。
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindImage    Kind = "image"
	KindNone     Kind = "none"
)

// KindFor 返回类型对应的预览组件，unknown 不渲染预览。
func KindFor(t repository.FileType) Kind {
	switch t {
	case repository.FileTypeVideo:
		return KindVideo
	case repository.FileTypeAudio:
		return KindAudio
	case repository.FileTypeDocument:
		return KindDocument
	case repository.FileTypeImage:
		return KindImage
	default:
		return KindNone
	}
}

// Preview 是选中文件的预览面板：组件种类加上元数据字段。
type Preview struct {
	Kind     Kind                `json:"kind"`
	Path     string              `json:"path"`
	Name     string              `json:"name"`
	Type     repository.FileType `json:"type"`
	Language string              `json:"language,omitempty"`
}

// Describe 构造预览面板。没有预览组件的文件尝试按扩展名给出语言提示。
func Describe(rec repository.FileRecord) Preview {
	p := Preview{
		Kind: KindFor(rec.Type),
		Path: rec.Path,
		Name: rec.Name,
		Type: rec.Type,
	}
	if p.Kind == KindNone {
		p.Language = languageHint(rec.Base())
	}
	return p
}

func languageHint(fileName string) string {
	if lang, safe := enry.GetLanguageByFilename(fileName); safe && lang != "" {
		return lang
	}
	if lang, safe := enry.GetLanguageByExtension(fileName); safe && lang != "" {
		return lang
	}
	return ""
}
