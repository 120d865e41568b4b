package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPaginateBy 是列表页每页展示的文章数量。
const DefaultPaginateBy = 10

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	GinMode        string
	UploadDir      string
	UploadURLPath  string
	PaginateBy     int
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "blogicum.db")
	v.SetDefault("SESSION_SECRET", "blogicum-dev-secret")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PATH", "/media")
	v.SetDefault("PAGINATE_BY", DefaultPaginateBy)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("METRICS_ENABLED", true)

	return fromViper(v)
}

func fromViper(v *viper.Viper) AppConfig {
	port := stringOr(v, "PORT", "8080")

	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	uploadURLPath := "/" + strings.Trim(stringOr(v, "UPLOAD_URL_PATH", "/media"), "/")
	if uploadURLPath == "/" {
		uploadURLPath = "/media"
	}

	paginateBy := v.GetInt("PAGINATE_BY")
	if paginateBy <= 0 {
		paginateBy = DefaultPaginateBy
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   stringOr(v, "DATABASE_PATH", "blogicum.db"),
		SessionSecret:  stringOr(v, "SESSION_SECRET", "blogicum-dev-secret"),
		GinMode:        stringOr(v, "GIN_MODE", "release"),
		UploadDir:      stringOr(v, "UPLOAD_DIR", "uploads"),
		UploadURLPath:  uploadURLPath,
		PaginateBy:     paginateBy,
		LogLevel:       strings.ToLower(stringOr(v, "LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(stringOr(v, "LOG_FORMAT", "json")),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}
}

func stringOr(v *viper.Viper, key, fallback string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return fallback
	}
	return value
}
