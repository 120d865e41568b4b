package main

import (
	"fmt"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var databasePath string

// rootCmd 默认启动 HTTP 服务
var rootCmd = &cobra.Command{
	Use:          "blogicum",
	Short:        "Blogicum blogging platform",
	Long:         "Blogicum is a small blogging platform: posts, categories, comments and user profiles.",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "SQLite database path (overrides DATABASE_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap 读取配置、构造日志并打开数据库，供所有子命令共用
func bootstrap() (config.AppConfig, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if databasePath != "" {
		cfg.DatabasePath = databasePath
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		return cfg, log, nil, fmt.Errorf("init database: %w", err)
	}

	return cfg, log, db.DB, nil
}
