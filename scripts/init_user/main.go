package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/db"
)

func main() {
	cfg := config.Load()
	var dsn, username, password string
	flag.StringVar(&dsn, "db", cfg.DatabaseURL, "database url (postgres:// or sqlite path)")
	flag.StringVar(&username, "user", "admin", "admin username")
	flag.StringVar(&password, "password", "", "admin password")
	flag.Parse()

	if password == "" {
		log.Fatal("必须通过 -password 指定管理员密码")
	}

	// 初始化数据库
	if err := db.Init(dsn); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	if err := db.EnsureUser(db.DB, username, password); err != nil {
		log.Fatal("创建用户失败:", err)
	}
	fmt.Printf("管理员用户已就绪: %s\n", username)
}
