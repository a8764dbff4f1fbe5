package api

import (
	"net/http"
	"strconv"
	"strings"

	"filedeck/internal/repository"
	"filedeck/internal/service"
	"filedeck/internal/viewer"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler 提供文件集合相关的 HTTP 端点。
type FileHandler struct {
	service          *service.FileService
	objects          *ObjectServer
	defaultDirectory string
	logger           *zap.Logger
}

func NewFileHandler(s *service.FileService, objects *ObjectServer, defaultDirectory string, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{service: s, objects: objects, defaultDirectory: defaultDirectory, logger: logger}
}

func (h *FileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Post("/", h.UploadFile)
		r.Post("/confirm/{token}", h.ConfirmUpload)
		r.Delete("/confirm/{token}", h.CancelUpload)
		r.Get("/{id}", h.GetFile)
		r.Patch("/{id}", h.RenameFile)
		r.Delete("/{id}", h.DeleteFile)
		r.Get("/{id}/preview", h.PreviewFile)
		r.Get("/{id}/download", h.DownloadFile)
	})
	r.Get("/breakdown", h.GetBreakdown)
}

type uploadRequest struct {
	FileName  string `json:"file_name"`
	Name      string `json:"name"`
	Directory string `json:"directory,omitempty"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type breakdownResponse struct {
	Breakdown service.Breakdown `json:"breakdown"`
	Chart     service.ChartData `json:"chart"`
}

// ListFiles 返回文件集合，支持 ?type= 与 ?prefix=，先按类型再按前缀过滤。
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	filter := service.FilterAll
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := service.ParseTypeFilter(raw)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		filter = parsed
	}
	prefix := r.URL.Query().Get("prefix")

	var (
		files []repository.FileRecord
		err   error
	)
	if filter == service.FilterAll && prefix != "" {
		files, err = h.service.FilterByPath(r.Context(), prefix)
	} else {
		files, err = h.service.FilterByType(r.Context(), filter)
		if err == nil && prefix != "" {
			files = keepPrefix(files, prefix)
		}
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if files == nil {
		files = []repository.FileRecord{}
	}

	writeJSON(w, http.StatusOK, envelope{Data: files})
}

// UploadFile 登记上传。名称已被占用时返回 409 与确认令牌；?overwrite=true 直接覆盖。
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	input := service.UploadInput{
		File:      service.RawFile{Name: req.FileName},
		Name:      req.Name,
		Directory: req.Directory,
	}
	if input.Directory == "" {
		input.Directory = h.defaultDirectory
	}

	if overwrite, _ := strconv.ParseBool(r.URL.Query().Get("overwrite")); overwrite {
		record, err := h.service.Upload(r.Context(), input, true)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{Data: record})
		return
	}

	result, err := h.service.ProposeUpload(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeUploadResult(w, result)
}

// ConfirmUpload 确认覆盖同名文件。
func (h *FileHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.ConfirmUpload(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: record})
}

// CancelUpload 放弃待确认的上传，令牌不存在同样返回 204。
func (h *FileHandler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	h.service.CancelUpload(chi.URLParam(r, "token"))
	w.WriteHeader(http.StatusNoContent)
}

// GetFile 返回单个文件的元数据。
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: record})
}

// RenameFile 只修改 name。
func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	record, err := h.service.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: record})
}

// DeleteFile 删除文件，重复删除同样成功。
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: map[string]any{"id": id, "deleted": true}})
}

// PreviewFile 返回该文件应使用的预览组件。
func (h *FileHandler) PreviewFile(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: viewer.Describe(*record)})
}

// DownloadFile 从文件服务器读取内容并以附件形式返回。
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.objects.serveRecord(w, r, record)
}

// GetBreakdown 返回类型统计与图表数据。
func (h *FileHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Breakdown(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: breakdownResponse{Breakdown: b, Chart: service.BuildChartData(b)}})
}

func (h *FileHandler) lookup(w http.ResponseWriter, r *http.Request) (*repository.FileRecord, bool) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return nil, false
	}
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return nil, false
	}
	return record, true
}

func writeUploadResult(w http.ResponseWriter, result *service.UploadResult) {
	if result.NeedsConfirmation {
		writeJSON(w, http.StatusConflict, envelope{Data: result})
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: result.Record})
}

func keepPrefix(files []repository.FileRecord, prefix string) []repository.FileRecord {
	out := make([]repository.FileRecord, 0, len(files))
	for _, rec := range files {
		if strings.HasPrefix(rec.Path, prefix) {
			out = append(out, rec)
		}
	}
	return out
}
