package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Open 根据 DSN 选择驱动：postgres:// 与 postgresql:// 使用 Postgres，其余视为 SQLite 文件路径。
func Open(dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("database url is empty")
	}
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}
	cfg := &gorm.Config{Logger: gormLogger}

	if isPostgres(trimmed) {
		return gorm.Open(postgres.Open(trimmed), cfg)
	}

	path := strings.TrimPrefix(trimmed, "sqlite://")
	if !strings.HasPrefix(path, "file:") {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}
	return gorm.Open(sqlite.Open(path), cfg)
}

// Init 初始化全局数据库连接并执行自动迁移。
func Init(dsn string) error {
	gdb, err := Open(dsn, nil)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Migrate 为核心模型创建表与唯一索引
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Page{},
		&Asset{},
		&Event{},
		&ContactSubmission{},
	)
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// ensureParentDir 为 SQLite 文件创建所在目录。
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("sqlite parent %s is not a directory", dir)
	}
	return os.MkdirAll(dir, 0o755)
}
