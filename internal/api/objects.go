package api

import (
	"io"
	"mime"
	"net/http"
	"path"

	"filedeck/internal/repository"
	"filedeck/internal/storage"

	"go.uber.org/zap"
)

// ObjectServer 从存储读取文件服务器路径下的字节，供预览组件和下载使用。
type ObjectServer struct {
	reader storage.Reader
	prefix string
	logger *zap.Logger
}

func NewObjectServer(reader storage.Reader, prefix string, logger *zap.Logger) *ObjectServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectServer{reader: reader, prefix: prefix, logger: logger}
}

// ServeFileServer 处理 GET {prefix}*，以 inline 方式返回内容。
func (s *ObjectServer) ServeFileServer(w http.ResponseWriter, r *http.Request) {
	key, ok := storage.KeyFromPath(s.prefix, r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "file content not found")
		return
	}
	s.serve(w, r, key, path.Base(key), "inline")
}

// serveRecord 按记录的 path 下载，文件名取 path 的最后一段。
func (s *ObjectServer) serveRecord(w http.ResponseWriter, r *http.Request, rec *repository.FileRecord) {
	key, ok := storage.KeyFromPath(s.prefix, rec.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "file is not served by the file server")
		return
	}
	s.serve(w, r, key, rec.Base(), "attachment")
}

func (s *ObjectServer) serve(w http.ResponseWriter, r *http.Request, key, fileName, disposition string) {
	if s == nil || s.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "file server not configured")
		return
	}

	content, err := s.reader.Read(r.Context(), key)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(path.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": fileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if _, err := io.Copy(w, content); err != nil {
		// 客户端可能已断开，无法再写入错误响应
		s.logger.Debug("stream file aborted", zap.String("key", key), zap.Error(err))
	}
}
