// Package seed 负责启动时一次性加载的初始文件列表。
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"filedeck/internal/config"
	"filedeck/internal/database"
	"filedeck/internal/repository"
	"filedeck/internal/repository/postgres"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Static 是固定的种子列表。
type Static []repository.FileRecord

// LoadSeed 返回列表副本。
func (s Static) LoadSeed(ctx context.Context) ([]repository.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]repository.FileRecord, len(s))
	copy(out, s)
	return out, nil
}

// Defaults 返回内置的示例文件，路径位于 prefix 之下。
func Defaults(prefix string) Static {
	return Static{
		{ID: 1, Name: "Big Buck Bunny", Type: repository.FileTypeVideo, Path: prefix + "big-buck-bunny.mp4"},
		{ID: 2, Name: "Morning Podcast", Type: repository.FileTypeAudio, Path: prefix + "morning-podcast.mp3"},
		{ID: 3, Name: "Quarterly Report", Type: repository.FileTypeDocument, Path: prefix + "quarterly-report.pdf"},
		{ID: 4, Name: "Team Photo", Type: repository.FileTypeImage, Path: prefix + "team-photo.jpg"},
		{ID: 5, Name: "Release Notes", Type: repository.FileTypeDocument, Path: prefix + "release-notes.txt"},
	}
}

// YAMLFile 从 YAML 文件读取种子数据，格式为顶层 files 列表。
type YAMLFile struct {
	Path string
}

type yamlSeed struct {
	Files []repository.FileRecord `yaml:"files"`
}

// LoadSeed 读取并解析文件，未知字段视为错误。
func (f YAMLFile) LoadSeed(ctx context.Context) ([]repository.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()
	return decodeYAML(file)
}

func decodeYAML(r io.Reader) ([]repository.FileRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlSeed
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, rec := range doc.Files {
		if rec.ID <= 0 {
			return nil, fmt.Errorf("seed entry %d (%q): id must be positive", i, rec.Name)
		}
	}
	return doc.Files, nil
}

// FromConfig 根据 SEED_SOURCE 选择种子来源。返回的 closer 释放来源持有的资源。
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.SeedSource, func() error, error) {
	noop := func() error { return nil }
	switch cfg.SeedSource {
	case config.SeedSourceYAML:
		return YAMLFile{Path: cfg.SeedFile}, noop, nil
	case config.SeedSourcePostgres:
		db, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect seed database: %w", err)
		}
		return postgres.NewSeedRepository(db), db.Close, nil
	default:
		return Defaults(cfg.FileServerPrefix), noop, nil
	}
}

