package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrObjectNotFound 表示存储中不存在对应的对象。
var ErrObjectNotFound = errors.New("storage: object not found")

// Reader 定义文件服务器的读接口。上传只登记元数据，因此这里没有写接口。
type Reader interface {
	Read(ctx context.Context, key string) (io.ReadCloser, error)
}

// KeyFromPath 把记录的 path（如 /file-server/sub/a.mp3）转换为存储 key（sub/a.mp3）。
// path 不在 prefix 之下或包含 ".." 时返回 false。
func KeyFromPath(prefix, p string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(p, prefix)
	for _, seg := range strings.Split(rest, "/") {
		if seg == ".." {
			return "", false
		}
	}
	key := strings.TrimPrefix(path.Clean("/"+rest), "/")
	if key == "" {
		return "", false
	}
	return key, true
}
