package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/logger"
	"github.com/ewillweb/internal/service"
	"gorm.io/gorm"
)

// 本地开发用的测试数据生成器
func main() {
	cfg := config.Load()
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "data/ewillweb-dev.db"
	}
	if err := db.Init(dsn); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	ctx := context.Background()

	if err := db.EnsureUser(db.DB, "admin", "admin123"); err != nil {
		log.Fatal("创建管理员失败:", err)
	}
	events, err := createTestEvents(ctx, db.DB)
	if err != nil {
		log.Fatal("创建活动失败:", err)
	}
	submissions, err := createTestSubmissions(ctx, db.DB, time.Now())
	if err != nil {
		log.Fatal("创建表单记录失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Println("用户: admin (密码: admin123)")
	fmt.Printf("活动: %d 筆\n", events)
	fmt.Printf("表单: %d 筆\n", submissions)
}

// createTestEvents 覆盖写入一组覆盖所有分类与状态的活动。
func createTestEvents(ctx context.Context, gdb *gorm.DB) (int, error) {
	svc := service.NewEventService(service.NewGormEventStore(gdb), logger.Nop())
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	categories := []string{
		db.EventCategorySeminar,
		db.EventCategoryWebinar,
		db.EventCategoryPressRelease,
		db.EventCategoryExhibition,
		db.EventCategoryOther,
	}
	statuses := []string{db.EventStatusPublished, db.EventStatusPublished, db.EventStatusDraft, db.EventStatusArchived}

	count := 0
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("event_demo_%02d", i+1)
		input := service.EventInput{
			EventID:      id,
			Title:        fmt.Sprintf("測試活動 %02d", i+1),
			Summary:      "開發環境自動產生的活動資料",
			Content:      "## 活動說明\n\n這是測試資料。",
			Category:     categories[i%len(categories)],
			Status:       statuses[i%len(statuses)],
			EventDate:    base.AddDate(0, 0, i*9).Format(time.RFC3339),
			CoverImageID: "demo_cover",
			SEO:          service.EventSEO{Title: fmt.Sprintf("測試活動 %02d", i+1), Keywords: []string{"demo"}},
		}
		if _, err := svc.Update(ctx, id, input); err == nil {
			count++
			continue
		}
		if _, err := svc.Create(ctx, input); err != nil {
			return count, fmt.Errorf("%s: %w", id, err)
		}
		count++
	}
	return count, nil
}

// createTestSubmissions 清空后重新写入联系表单记录。
func createTestSubmissions(ctx context.Context, gdb *gorm.DB, now time.Time) (int, error) {
	if err := gdb.WithContext(ctx).Where("1 = 1").Delete(&db.ContactSubmission{}).Error; err != nil {
		return 0, err
	}
	store := service.NewGormSubmissionStore(gdb)
	names := []string{"王小明", "林美華", "陳志強", "Alice Chen", "張家豪"}
	for i, name := range names {
		company := "測試公司"
		submission := &db.ContactSubmission{
			SubmissionID: fmt.Sprintf("sub_demo%04d", i+1),
			Name:         name,
			Email:        fmt.Sprintf("demo%d@example.com", i+1),
			Phone:        "02-1234-5678",
			Company:      &company,
			Message:      "想了解資安解決方案的報價。",
			SourcePage:   "/contact",
			CreatedAt:    now.Add(-time.Duration(i) * time.Hour),
		}
		if err := store.Insert(ctx, submission); err != nil {
			return i, err
		}
	}
	return len(names), nil
}
