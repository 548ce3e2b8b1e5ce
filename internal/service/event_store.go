package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ewillweb/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventStore 把活动保存在关系数据库中。
type GormEventStore struct {
	db *gorm.DB
}

// NewGormEventStore 创建数据库存储。
func NewGormEventStore(gdb *gorm.DB) *GormEventStore {
	return &GormEventStore{db: gdb}
}

func (s *GormEventStore) List(ctx context.Context, params ListParams) ([]db.Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&db.Event{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []db.Event
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: params.SortBy}, Desc: params.SortOrder == SortDesc}).
		Order("id").
		Limit(params.PageSize).
		Offset(params.offset()).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *GormEventStore) Get(ctx context.Context, id string) (*db.Event, error) {
	var event db.Event
	if err := s.db.WithContext(ctx).Where("event_id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormEventStore) Create(ctx context.Context, event *db.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormEventStore) Update(ctx context.Context, event *db.Event) error {
	return s.db.WithContext(ctx).Save(event).Error
}

// Upsert 按 event_id 覆盖写入，用于批量导入。
func (s *GormEventStore) Upsert(ctx context.Context, event *db.Event) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "summary", "content", "category", "status", "event_date", "end_date",
			"cover_image_id", "hero_image_id", "page_slug", "gallery", "seo", "aio", "updated_at",
		}),
	}).Create(event).Error
}

func (s *GormEventStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("event_id = ?", id).Delete(&db.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// MockEventStore 在未配置数据库时提供固定的示例活动，只读。
type MockEventStore struct {
	events []db.Event
}

// NewMockEventStore 返回内置两条示例活动的存储。
func NewMockEventStore() *MockEventStore {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &MockEventStore{events: []db.Event{
		{
			EventID:      "mock-event-1",
			Title:        "[Mock] 資安研討會 2026",
			Summary:      "探討最新資安趨勢與解決方案",
			Category:     db.EventCategorySeminar,
			Status:       db.EventStatusPublished,
			EventDate:    time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			CoverImageID: "mock-cover-1",
			PageSlug:     "event_mock_1",
			Content:      "# Mock 活動內容\n\n這是 CI 環境的測試資料。",
			SEO:          datatypes.JSON(`{"title":"[Mock] 資安研討會 2026 | 鎰威科技","description":"探討最新資安趨勢與解決方案","keywords":["security","seminar","mock"]}`),
			CreatedAt:    created,
			UpdatedAt:    created,
		},
		{
			EventID:      "mock-event-2",
			Title:        "[Mock] 線上技術分享",
			Summary:      "雲端安全最佳實務",
			Category:     db.EventCategoryWebinar,
			Status:       db.EventStatusPublished,
			EventDate:    time.Date(2026, 2, 20, 14, 0, 0, 0, time.UTC),
			CoverImageID: "mock-cover-2",
			PageSlug:     "event_mock_2",
			Content:      "# Mock 線上分享\n\n這是 CI 環境的測試資料。",
			SEO:          datatypes.JSON(`{"title":"[Mock] 線上技術分享 | 鎰威科技","description":"雲端安全最佳實務","keywords":["cloud","security","mock"]}`),
			CreatedAt:    created,
			UpdatedAt:    created,
		},
	}}
}

func (s *MockEventStore) List(_ context.Context, params ListParams) ([]db.Event, int64, error) {
	filtered := make([]db.Event, 0, len(s.events))
	for _, e := range s.events {
		if params.Status != "" && e.Status != params.Status {
			continue
		}
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i].EventDate, filtered[j].EventDate
		if params.SortBy == SortByCreatedAt {
			a, b = filtered[i].CreatedAt, filtered[j].CreatedAt
		}
		if params.SortOrder == SortAsc {
			return a.Before(b)
		}
		return a.After(b)
	})

	total := int64(len(filtered))
	start := params.offset()
	if start < 0 || start >= len(filtered) {
		return []db.Event{}, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// Get 同时接受活动 ID 与页面 slug。
func (s *MockEventStore) Get(_ context.Context, id string) (*db.Event, error) {
	for _, e := range s.events {
		if e.EventID == id || e.PageSlug == id {
			event := e
			return &event, nil
		}
	}
	return nil, ErrEventNotFound
}

func (s *MockEventStore) Create(context.Context, *db.Event) error { return ErrStoreReadOnly }
func (s *MockEventStore) Update(context.Context, *db.Event) error { return ErrStoreReadOnly }
func (s *MockEventStore) Upsert(context.Context, *db.Event) error { return ErrStoreReadOnly }
func (s *MockEventStore) Delete(context.Context, string) error    { return ErrStoreReadOnly }
