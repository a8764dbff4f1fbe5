package service

import (
	"errors"
	"fmt"
)

// ErrProposalNotFound 表示确认令牌不存在、已使用或已过期。
var ErrProposalNotFound = errors.New("service: upload proposal not found or expired")

// ValidationError 描述被拒绝的输入值。
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// DuplicateNameError 表示名称已被另一条记录占用。
type DuplicateNameError struct {
	Name       string
	ExistingID int64
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q already used by file %d", e.Name, e.ExistingID)
}

// IsValidation 判断 err 链中是否包含 ValidationError。
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsDuplicateName 判断 err 链中是否包含 DuplicateNameError。
func IsDuplicateName(err error) bool {
	var target *DuplicateNameError
	return errors.As(err, &target)
}
