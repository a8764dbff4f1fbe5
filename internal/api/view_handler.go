package api

import (
	"net/http"

	"filedeck/internal/service"
	"filedeck/internal/viewstate"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ViewHandler 把界面操作映射到 viewstate.Controller。变更类端点返回最新的视图快照。
type ViewHandler struct {
	controller *viewstate.Controller
	objects    *ObjectServer
	stream     http.Handler
	logger     *zap.Logger
}

// NewViewHandler 创建视图端点；stream 为空时不注册 websocket 推送。
func NewViewHandler(controller *viewstate.Controller, objects *ObjectServer, stream http.Handler, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{controller: controller, objects: objects, stream: stream, logger: logger}
}

func (h *ViewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/view", func(r chi.Router) {
		r.Get("/", h.GetView)
		r.Post("/select/{id}", h.Select)
		r.Delete("/select", h.ClearSelection)
		r.Put("/filter", h.SetFilter)
		r.Put("/directory", h.SetDirectory)
		r.Post("/rename", h.RenameSelected)
		r.Post("/delete", h.DeleteSelected)
		r.Get("/download", h.DownloadSelected)
		r.Post("/upload", h.Upload)
		r.Post("/upload/confirm/{token}", h.ConfirmUpload)
		r.Delete("/upload/confirm/{token}", h.CancelUpload)
		r.Post("/chart", h.OpenChart)
		r.Delete("/chart", h.CloseChart)
		if h.stream != nil {
			r.Get("/stream", h.stream.ServeHTTP)
		}
	})
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type directoryRequest struct {
	Path string `json:"path"`
}

type viewUploadRequest struct {
	FileName string `json:"file_name"`
	Name     string `json:"name"`
}

// GetView 返回当前视图快照。
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, r, http.StatusOK)
}

// Select 切换选中状态。
func (h *ViewHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	if _, err := h.controller.Select(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// ClearSelection 取消选中。
func (h *ViewHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearSelection()
	h.writeView(w, r, http.StatusOK)
}

// SetFilter 设置类型过滤器。
func (h *ViewHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if _, err := h.controller.SetTypeFilter(req.Filter); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// SetDirectory 设置当前目录前缀。
func (h *ViewHandler) SetDirectory(w http.ResponseWriter, r *http.Request) {
	var req directoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if err := h.controller.SetDirectory(req.Path); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// RenameSelected 重命名选中的文件。
func (h *ViewHandler) RenameSelected(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if _, err := h.controller.RenameSelected(r.Context(), req.Name); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// DeleteSelected 删除选中的文件。
func (h *ViewHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DeleteSelected(r.Context()); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// DownloadSelected 下载选中的文件。
func (h *ViewHandler) DownloadSelected(w http.ResponseWriter, r *http.Request) {
	record, err := h.controller.DownloadTarget(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.objects.serveRecord(w, r, record)
}

// Upload 在当前目录下登记上传。
func (h *ViewHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req viewUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	result, err := h.controller.ProposeUpload(r.Context(), service.RawFile{Name: req.FileName}, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeUploadResult(w, result)
}

// ConfirmUpload 确认覆盖。
func (h *ViewHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.ConfirmUpload(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeView(w, r, http.StatusOK)
}

// CancelUpload 放弃覆盖。
func (h *ViewHandler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	h.controller.CancelUpload(chi.URLParam(r, "token"))
	h.writeView(w, r, http.StatusOK)
}

// OpenChart 打开统计弹窗。
func (h *ViewHandler) OpenChart(w http.ResponseWriter, r *http.Request) {
	h.controller.OpenChart()
	h.writeView(w, r, http.StatusOK)
}

// CloseChart 关闭统计弹窗。
func (h *ViewHandler) CloseChart(w http.ResponseWriter, r *http.Request) {
	h.controller.CloseChart()
	h.writeView(w, r, http.StatusOK)
}

func (h *ViewHandler) writeView(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.controller.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, status, envelope{Data: view})
}
