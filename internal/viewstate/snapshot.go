package viewstate

import (
	"context"

	"filedeck/internal/repository"
	"filedeck/internal/service"
	"filedeck/internal/viewer"
)

// ChartView 是统计弹窗的内容。
type ChartView struct {
	Breakdown service.Breakdown `json:"breakdown"`
	Data      service.ChartData `json:"data"`
}

// View 是界面渲染所需的完整状态。
type View struct {
	Directory  string                  `json:"directory"`
	HeaderPath string                  `json:"header_path"`
	Filter     service.TypeFilter      `json:"filter"`
	Selected   *repository.FileRecord  `json:"selected,omitempty"`
	Preview    *viewer.Preview         `json:"preview,omitempty"`
	Files      []repository.FileRecord `json:"files"`
	ChartOpen  bool                    `json:"chart_open"`
	Chart      *ChartView              `json:"chart,omitempty"`
}

// Snapshot 一次性读取当前视图。标题路径在有选中文件时显示其 path，否则显示当前目录。
func (c *Controller) Snapshot(ctx context.Context) (*View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected, err := c.selectedLocked(ctx)
	if err != nil {
		return nil, err
	}

	files, err := c.visibleLocked(ctx)
	if err != nil {
		return nil, err
	}

	view := &View{
		Directory:  c.directory,
		HeaderPath: c.directory,
		Filter:     c.filter,
		Selected:   selected,
		Preview:    previewFor(selected),
		Files:      files,
		ChartOpen:  c.chartOpen,
	}
	if selected != nil {
		view.HeaderPath = selected.Path
	}

	if c.chartOpen {
		b, err := c.files.Breakdown(ctx)
		if err != nil {
			return nil, err
		}
		view.Chart = &ChartView{Breakdown: b, Data: service.BuildChartData(b)}
	}

	return view, nil
}
