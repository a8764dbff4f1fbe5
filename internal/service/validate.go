package service

import (
	"strings"

	"filedeck/internal/repository"
)

// ValidateName 校验文件名：非空、非纯空白、不含 "/"。
func ValidateName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Field: "name", Value: name, Reason: "name cannot be empty"}
	case strings.TrimSpace(name) == "":
		return &ValidationError{Field: "name", Value: name, Reason: "name cannot be whitespace only"}
	case strings.Contains(name, "/"):
		return &ValidationError{Field: "name", Value: name, Reason: "name cannot contain '/'"}
	default:
		return nil
	}
}

// TypeFilter 是列表视图的类型过滤器。
type TypeFilter string

// FilterAll 不做类型过滤。
const FilterAll TypeFilter = "all"

// ParseTypeFilter 只接受 all/video/audio/document/image。
func ParseTypeFilter(raw string) (TypeFilter, error) {
	value := TypeFilter(strings.ToLower(strings.TrimSpace(raw)))
	if value == FilterAll {
		return value, nil
	}
	for _, t := range repository.KnownFileTypes {
		if TypeFilter(t) == value {
			return value, nil
		}
	}
	return "", &ValidationError{Field: "filter", Value: raw, Reason: "must be one of all, video, audio, document, image"}
}

func (f TypeFilter) params() repository.ListFilesParams {
	if f == FilterAll || f == "" {
		return repository.ListFilesParams{}
	}
	return repository.ListFilesParams{Types: []repository.FileType{repository.FileType(f)}}
}
