package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// 种子数据来源
const (
	SeedSourceBuiltin  = "builtin"
	SeedSourceYAML     = "yaml"
	SeedSourcePostgres = "postgres"
)

// 文件服务器存储驱动
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Config 聚合服务启动需要的关键配置。
type Config struct {
	HTTPPort           string
	LogLevel           string
	LogFormat          string // "json" 或 "console"
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	// 文件服务器路径前缀，既是默认目录也是下载路由
	FileServerPrefix string
	ProposalTTL      time.Duration
	// 种子数据
	SeedSource string
	SeedFile   string
	// 数据库，仅种子来源为 postgres 时使用
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// 存储配置
	StorageDriver string
	StorageDir    string
	S3Endpoint    string // S3/MinIO 端点，不含协议
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	S3UseSSL      bool
	S3PathStyle   bool
}

// Load 从环境变量加载配置，并提供默认值。
func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	corsOrigins := parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:3000"}
	}

	rateLimitRequests, err := parseIntEnv("RATE_LIMIT_REQUESTS", 120)
	if err != nil {
		return nil, err
	}

	rateLimitWindow, err := parseDurationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	proposalTTL, err := parseDurationEnv("PROPOSAL_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	prefix := envOrDefault("FILE_SERVER_PREFIX", "/file-server/")
	if !strings.HasPrefix(prefix, "/") || !strings.HasSuffix(prefix, "/") {
		return nil, fmt.Errorf("FILE_SERVER_PREFIX 必须以 / 开头和结尾: %q", prefix)
	}

	seedSource := strings.ToLower(envOrDefault("SEED_SOURCE", SeedSourceBuiltin))
	switch seedSource {
	case SeedSourceBuiltin, SeedSourceYAML, SeedSourcePostgres:
	default:
		return nil, fmt.Errorf("不支持的 SEED_SOURCE: %s", seedSource)
	}
	seedFile := os.Getenv("SEED_FILE")
	if seedSource == SeedSourceYAML && seedFile == "" {
		return nil, fmt.Errorf("SEED_SOURCE=yaml 时必须设置 SEED_FILE")
	}

	storageDriver := strings.ToLower(envOrDefault("STORAGE_DRIVER", StorageDriverLocal))
	switch storageDriver {
	case StorageDriverLocal, StorageDriverS3:
	default:
		return nil, fmt.Errorf("不支持的 STORAGE_DRIVER: %s", storageDriver)
	}

	storageDir := envOrDefault("STORAGE_DIR", "./data")
	if storageDriver == StorageDriverLocal {
		if err := ensureDir(storageDir); err != nil {
			return nil, fmt.Errorf("确保存储目录失败: %w", err)
		}
	}

	return &Config{
		HTTPPort:           port,
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		CORSAllowedOrigins: corsOrigins,
		RateLimitRequests:  rateLimitRequests,
		RateLimitWindow:    rateLimitWindow,
		FileServerPrefix:   prefix,
		ProposalTTL:        proposalTTL,
		SeedSource:         seedSource,
		SeedFile:           seedFile,
		DBHost:             envOrDefault("DB_HOST", "127.0.0.1"),
		DBPort:             dbPort,
		DBUser:             envOrDefault("DB_USER", "filedeck"),
		DBPassword:         envOrDefault("DB_PASSWORD", "filedeck"),
		DBName:             envOrDefault("DB_NAME", "filedeck"),
		DBSSLMode:          envOrDefault("DB_SSL_MODE", "disable"),
		StorageDriver:      storageDriver,
		StorageDir:         storageDir,
		S3Endpoint:         envOrDefault("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:        envOrDefault("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        envOrDefault("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           envOrDefault("S3_BUCKET", "filedeck"),
		S3Region:           envOrDefault("S3_REGION", "us-east-1"),
		S3Prefix:           os.Getenv("S3_PREFIX"),
		S3UseSSL:           parseBoolEnv("S3_USE_SSL", false),
		S3PathStyle:        parseBoolEnv("S3_PATH_STYLE", true),
	}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("路径 %s 已存在但不是目录", path)
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}

	return err
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}

	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	if value <= 0 {
		return defaultValue, nil
	}
	return value, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	if value <= 0 {
		return defaultValue, nil
	}
	return value, nil
}

func parseBoolEnv(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	lower := strings.ToLower(raw)
	return lower == "true" || lower == "1" || lower == "yes"
}

// PostgresDSN 生成标准 postgres:// 连接串，供数据访问层直接使用。
func (c *Config) PostgresDSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   c.DBName,
	}

	q := url.Values{}
	if c.DBSSLMode != "" {
		q.Set("sslmode", c.DBSSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
