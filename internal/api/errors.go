package api

import (
	"context"
	"errors"
	"net/http"

	"filedeck/internal/repository"
	"filedeck/internal/service"
	"filedeck/internal/storage"
	"filedeck/internal/viewstate"

	"go.uber.org/zap"
)

// writeServiceError 把业务错误映射为状态码与错误码，未知错误记日志并返回 500。
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation *service.ValidationError
		duplicate  *service.DuplicateNameError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "invalid_"+validation.Field, validation.Error())
	case errors.As(err, &duplicate):
		writeError(w, http.StatusConflict, "duplicate_name", duplicate.Error())
	case errors.Is(err, service.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, "proposal_not_found", "upload proposal not found or expired")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "file not found")
	case errors.Is(err, storage.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "object_not_found", "file content not found")
	case errors.Is(err, viewstate.ErrNoSelection):
		writeError(w, http.StatusConflict, "no_selection", "no file selected")
	case errors.Is(err, context.Canceled):
		// 客户端已断开
		logger.Debug("request cancelled", zap.Error(err))
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
