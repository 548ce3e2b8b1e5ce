package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ewillweb/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := db.Open("file:"+name+"?mode=memory&cache=shared", logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedEvent(t *testing.T, gdb *gorm.DB, id, category, status string, date time.Time) {
	t.Helper()
	event := db.Event{
		EventID:   id,
		Title:     "活动 " + id,
		Category:  category,
		Status:    status,
		EventDate: date,
		PageSlug:  id,
		Content:   "## 标题\n\n内容",
	}
	if err := gdb.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event %s: %v", id, err)
	}
}

func TestListParamsFromQuery(t *testing.T) {
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 10},
		{"page=0", 1, 10},
		{"page=-4&page_size=-1", 1, 1},
		{"page=abc&page_size=abc", 1, 10},
		{"page=3&page_size=999", 3, 50},
		{"page_size=0", 1, 1},
		{"page_size=25", 1, 25},
		{"page_size=20.5", 1, 20},
		{"page_size=5abc&page=2.9", 2, 5},
		{"page= 7 &page_size=+8", 7, 8},
		{"page=4611686018427387905&page_size=10", maxPage, 10},
		{"page=99999999999999999999999&page_size=-99999999999999999999", maxPage, 1},
	}
	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		p := ListParamsFromQuery(q)
		if p.Page != tc.page || p.PageSize != tc.pageSize {
			t.Fatalf("query %q: expected page=%d size=%d, got page=%d size=%d", tc.query, tc.page, tc.pageSize, p.Page, p.PageSize)
		}
	}

	q, _ := url.ParseQuery("status=bogus&category=webinar&sort_by=title&sort_order=up")
	p := ListParamsFromQuery(q)
	if p.Status != "" {
		t.Fatalf("expected invalid status to be ignored, got %q", p.Status)
	}
	if p.Category != db.EventCategoryWebinar {
		t.Fatalf("expected category webinar, got %q", p.Category)
	}
	if p.SortBy != SortByEventDate || p.SortOrder != SortDesc {
		t.Fatalf("expected default sort, got %s %s", p.SortBy, p.SortOrder)
	}
}

func TestEventServiceListFiltersAndPaginates(t *testing.T) {
	gdb := setupServiceTestDB(t)
	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	seedEvent(t, gdb, "event_a", db.EventCategorySeminar, db.EventStatusPublished, base)
	seedEvent(t, gdb, "event_b", db.EventCategoryWebinar, db.EventStatusPublished, base.AddDate(0, 0, 1))
	seedEvent(t, gdb, "event_c", db.EventCategorySeminar, db.EventStatusDraft, base.AddDate(0, 0, 2))

	svc := NewEventService(NewGormEventStore(gdb), nil)
	ctx := context.Background()

	all, err := svc.List(ctx, ListParams{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.Total != 3 || len(all.Items) != 2 || !all.HasMore {
		t.Fatalf("unexpected first page: %+v", all)
	}
	if all.Items[0].ID != "event_c" {
		t.Fatalf("expected newest event first, got %s", all.Items[0].ID)
	}

	second, err := svc.List(ctx, ListParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if len(second.Items) != 1 || second.HasMore {
		t.Fatalf("unexpected second page: %+v", second)
	}

	published, err := svc.List(ctx, ListParams{Status: db.EventStatusPublished, Category: db.EventCategorySeminar, SortOrder: SortAsc})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if published.Total != 1 || published.Items[0].ID != "event_a" {
		t.Fatalf("unexpected filtered result: %+v", published)
	}
	if published.Items[0].EventDate != "2025-10-01T09:00:00.000Z" {
		t.Fatalf("unexpected event date format: %s", published.Items[0].EventDate)
	}
}

func TestEventListPageFarPastEnd(t *testing.T) {
	gdb := setupServiceTestDB(t)
	seedEvent(t, gdb, "event_a", db.EventCategorySeminar, db.EventStatusPublished, time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	q, _ := url.ParseQuery("page=4611686018427387905&page_size=10")
	params := ListParamsFromQuery(q)
	ctx := context.Background()

	for name, store := range map[string]EventStore{
		"gorm": NewGormEventStore(gdb),
		"mock": NewMockEventStore(),
	} {
		list, err := NewEventService(store, nil).List(ctx, params)
		if err != nil {
			t.Fatalf("%s: list failed: %v", name, err)
		}
		if len(list.Items) != 0 || list.HasMore {
			t.Fatalf("%s: expected empty last page, got %+v", name, list)
		}
		if list.Total == 0 || list.Page != maxPage {
			t.Fatalf("%s: unexpected paging fields: total=%d page=%d", name, list.Total, list.Page)
		}
	}
}

func TestEventServiceGetRendersContent(t *testing.T) {
	gdb := setupServiceTestDB(t)
	seedEvent(t, gdb, "event_x", db.EventCategoryOther, db.EventStatusPublished, time.Now())
	svc := NewEventService(NewGormEventStore(gdb), nil)

	detail, err := svc.Get(context.Background(), "event_x")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(detail.ContentHTML, "<h2") {
		t.Fatalf("expected rendered heading, got %q", detail.ContentHTML)
	}
	if detail.SEO.Keywords == nil {
		t.Fatalf("expected keywords to default to empty slice")
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventServiceCreateUpdateDelete(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewEventService(NewGormEventStore(gdb), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, EventInput{Title: "", Category: "party"}); err == nil {
		t.Fatalf("expected validation error")
	} else {
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Errors) < 3 {
			t.Fatalf("expected field errors for title, category, event_date, got %v", err)
		}
	}

	created, err := svc.Create(ctx, EventInput{
		Title:     "智慧製造研討會",
		Category:  db.EventCategoryWebinar,
		EventDate: "2025-11-18T14:00:00+08:00",
		EndDate:   "2025-11-18T16:00:00+08:00",
		Gallery:   []string{"event_info_smartmfg"},
		SEO:       EventSEO{Title: "智慧製造", Keywords: []string{"MES"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasPrefix(created.ID, "event_") || created.PageSlug != created.ID {
		t.Fatalf("expected generated id and page slug, got %+v", created)
	}
	if created.Status != db.EventStatusDraft {
		t.Fatalf("expected default draft status, got %s", created.Status)
	}
	if created.EventDate != "2025-11-18T06:00:00.000Z" || created.EndDate != "2025-11-18T08:00:00.000Z" {
		t.Fatalf("unexpected dates %s %s", created.EventDate, created.EndDate)
	}

	if _, err := svc.Create(ctx, EventInput{EventID: created.ID, Title: "dup", Category: db.EventCategoryOther, EventDate: "2025-01-01T00:00:00Z"}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}

	updated, err := svc.Update(ctx, created.ID, EventInput{
		Title:     "智慧製造研討會（更新）",
		Category:  db.EventCategoryWebinar,
		Status:    db.EventStatusPublished,
		EventDate: "2025-11-18T14:00:00+08:00",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != db.EventStatusPublished || updated.EndDate != "" || updated.PageSlug != created.PageSlug {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMockEventStore(t *testing.T) {
	svc := NewEventService(NewMockEventStore(), nil)
	ctx := context.Background()

	list, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("mock list failed: %v", err)
	}
	if list.Total != 2 || list.Items[0].ID != "mock-event-1" {
		t.Fatalf("unexpected mock list: %+v", list)
	}

	webinars, _ := svc.List(ctx, ListParams{Category: db.EventCategoryWebinar})
	if webinars.Total != 1 || webinars.Items[0].ID != "mock-event-2" {
		t.Fatalf("expected mock filter by category, got %+v", webinars)
	}

	beyond, _ := svc.List(ctx, ListParams{Page: 5})
	if len(beyond.Items) != 0 || beyond.HasMore {
		t.Fatalf("expected empty page beyond range, got %+v", beyond)
	}

	bySlug, err := svc.Get(ctx, "event_mock_1")
	if err != nil || bySlug.ID != "mock-event-1" {
		t.Fatalf("expected lookup by page slug, got %+v %v", bySlug, err)
	}
	if len(bySlug.SEO.Keywords) != 3 {
		t.Fatalf("expected mock seo keywords, got %+v", bySlug.SEO)
	}

	_, err = svc.Create(ctx, EventInput{Title: "x", Category: db.EventCategoryOther, EventDate: "2025-01-01T00:00:00Z"})
	if !errors.Is(err, ErrStoreReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
	if err := svc.Delete(ctx, "mock-event-1"); !errors.Is(err, ErrStoreReadOnly) {
		t.Fatalf("expected read-only delete, got %v", err)
	}
}

func TestSeedEventsUpserts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewEventService(NewGormEventStore(gdb), nil)
	ctx := context.Background()

	doc := `events:
  - event_id: event_20251021
    title: 活動回顧
    category: seminar
    status: published
    event_date: "2025-10-21T09:00:00+08:00"
    cover_image_id: event_info_photo_1
    gallery: [event_info_photo_1]
    seo:
      title: 活動回顧
      keywords: [Dell]
    aio:
      webpage:
        type: EventPage
  - title: 缺少 ID
    category: seminar
    event_date: "2025-10-21T09:00:00+08:00"
  - event_id: event_bad
    title: 錯誤分類
    category: party
    event_date: "2025-10-21T09:00:00+08:00"
`
	result, err := svc.SeedEvents(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if result.Upserted != 1 || len(result.Failed) != 2 {
		t.Fatalf("unexpected seed result: %+v", result)
	}

	again := strings.Replace(doc, "title: 活動回顧\n    category", "title: 活動回顧（修訂）\n    category", 1)
	if _, err := svc.SeedEvents(ctx, strings.NewReader(again)); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var count int64
	gdb.Model(&db.Event{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected upsert to keep one row, got %d", count)
	}
	detail, err := svc.Get(ctx, "event_20251021")
	if err != nil {
		t.Fatalf("get seeded event: %v", err)
	}
	if detail.Title != "活動回顧（修訂）" || detail.PageSlug != "event_20251021" {
		t.Fatalf("unexpected seeded detail: %+v", detail)
	}
	if len(detail.Gallery) != 1 || len(detail.AIO) == 0 {
		t.Fatalf("expected gallery and aio to round-trip, got %+v", detail)
	}
}
