package repository

import "errors"

var (
	// ErrNotFound 表示目标记录不存在。
	ErrNotFound = errors.New("repository: record not found")

	// ErrConflict 表示 id 或名称已被其他记录占用。
	ErrConflict = errors.New("repository: record conflicts with existing record")
)
