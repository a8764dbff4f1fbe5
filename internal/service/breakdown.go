package service

import (
	"context"
	"errors"

	"filedeck/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// filesByType 当前集合中各类型的文件数量
var filesByType = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "filedeck_files",
		Help: "Number of files in the collection by type",
	},
	[]string{"type"},
)

// Breakdown 是按类型统计的数量。图表只使用四种已知类型，Unknown 单独给出，
// 因此 Video+Audio+Document+Image == Total-Unknown。
type Breakdown struct {
	Video    int `json:"video"`
	Audio    int `json:"audio"`
	Document int `json:"document"`
	Image    int `json:"image"`
	Unknown  int `json:"unknown"`
	Total    int `json:"total"`
}

// Charted 返回计入图表的文件数。
func (b Breakdown) Charted() int {
	return b.Video + b.Audio + b.Document + b.Image
}

// Counts 按图表标签顺序返回四种类型的数量。
func (b Breakdown) Counts() map[repository.FileType]int {
	return map[repository.FileType]int{
		repository.FileTypeVideo:    b.Video,
		repository.FileTypeAudio:    b.Audio,
		repository.FileTypeDocument: b.Document,
		repository.FileTypeImage:    b.Image,
	}
}

// ComputeBreakdown 对给定记录计数。
func ComputeBreakdown(records []repository.FileRecord) Breakdown {
	b := Breakdown{Total: len(records)}
	for _, rec := range records {
		switch rec.Type {
		case repository.FileTypeVideo:
			b.Video++
		case repository.FileTypeAudio:
			b.Audio++
		case repository.FileTypeDocument:
			b.Document++
		case repository.FileTypeImage:
			b.Image++
		default:
			b.Unknown++
		}
	}
	return b
}

// Breakdown 每次都从当前集合重新计算，不做缓存。
func (s *FileService) Breakdown(ctx context.Context) (Breakdown, error) {
	if s == nil || s.repo == nil {
		return Breakdown{}, errors.New("file service not initialized")
	}
	records, err := s.repo.List(ctx, repository.ListFilesParams{})
	if err != nil {
		return Breakdown{}, err
	}
	return ComputeBreakdown(records), nil
}

// Subscribe 注册变更回调，每次集合变更后以最新统计调用。
// 回调在服务锁内同步执行，不能再调用 FileService 的方法。
func (s *FileService) Subscribe(fn func(Breakdown)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

type subscriber struct {
	id int
	fn func(Breakdown)
}

// publishLocked 在变更已经写入后调用，不受调用方取消影响，否则订阅者会停留在旧统计。
func (s *FileService) publishLocked(ctx context.Context) {
	records, err := s.repo.List(context.WithoutCancel(ctx), repository.ListFilesParams{})
	if err != nil {
		s.logger.Warn("breakdown refresh failed", zap.Error(err))
		return
	}
	b := ComputeBreakdown(records)

	for ft, n := range b.Counts() {
		filesByType.WithLabelValues(string(ft)).Set(float64(n))
	}
	filesByType.WithLabelValues(string(repository.FileTypeUnknown)).Set(float64(b.Unknown))

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.fn(b)
	}
}
