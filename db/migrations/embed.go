package migrations

import "embed"

// UpFiles 嵌入 seed_files 表结构与默认种子数据的 up 迁移。
//
//go:embed *.up.sql
var UpFiles embed.FS
