package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ewillweb/internal/content"
	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/logger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrStoreReadOnly = errors.New("store is read-only")
)

const (
	SortByEventDate = "event_date"
	SortByCreatedAt = "created_at"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// isoLayout 与 JavaScript Date.toISOString 的输出一致。
const isoLayout = "2006-01-02T15:04:05.000Z"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ListParams 是活动列表的查询条件，经 Normalize 后才可交给 EventStore。
type ListParams struct {
	Page      int
	PageSize  int
	Status    string
	Category  string
	SortBy    string
	SortOrder string
}

// ListParamsFromQuery 解析查询字符串：非法的 status/category 会被忽略而不是报错。
func ListParamsFromQuery(q url.Values) ListParams {
	return ListParams{
		Page:      parsePage(q.Get("page")),
		PageSize:  parsePageSize(q.Get("page_size")),
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}.Normalize()
}

// Normalize 把各字段限制在允许范围内。
func (p ListParams) Normalize() ListParams {
	p.Page = normalizePage(p.Page)
	if p.PageSize == 0 {
		p.PageSize = defaultPageSize
	}
	p.PageSize = clampPageSize(p.PageSize)

	p.Status = strings.TrimSpace(p.Status)
	if !db.IsValidEventStatus(p.Status) {
		p.Status = ""
	}
	p.Category = strings.TrimSpace(p.Category)
	if !db.IsValidEventCategory(p.Category) {
		p.Category = ""
	}
	if p.SortBy != SortByCreatedAt {
		p.SortBy = SortByEventDate
	}
	if p.SortOrder != SortAsc {
		p.SortOrder = SortDesc
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

// EventStore 是活动数据的存储策略，启动时选定 gorm 或 mock 实现。
type EventStore interface {
	List(ctx context.Context, params ListParams) ([]db.Event, int64, error)
	Get(ctx context.Context, id string) (*db.Event, error)
	Create(ctx context.Context, event *db.Event) error
	Update(ctx context.Context, event *db.Event) error
	Upsert(ctx context.Context, event *db.Event) error
	Delete(ctx context.Context, id string) error
}

// EventSEO 是活动的 SEO 字段。
type EventSEO struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	OGImage     string   `json:"og_image,omitempty" yaml:"og_image,omitempty"`
}

// EventSummary 是列表中的一项。
type EventSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Category     string `json:"category"`
	EventDate    string `json:"event_date"`
	CoverImageID string `json:"cover_image_id"`
	PageSlug     string `json:"page_slug"`
}

// EventList 是分页结果。
type EventList struct {
	Items    []EventSummary `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// EventDetail 是单个活动的完整内容。
type EventDetail struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Category     string          `json:"category"`
	Status       string          `json:"status"`
	EventDate    string          `json:"event_date"`
	EndDate      string          `json:"end_date,omitempty"`
	CoverImageID string          `json:"cover_image_id"`
	HeroImageID  string          `json:"hero_image_id,omitempty"`
	PageSlug     string          `json:"page_slug"`
	Content      string          `json:"content"`
	ContentHTML  string          `json:"content_html"`
	Gallery      []string        `json:"gallery,omitempty"`
	SEO          EventSEO        `json:"seo"`
	AIO          json.RawMessage `json:"aio,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// EventInput 是后台创建/更新与 YAML 导入共用的输入。
type EventInput struct {
	EventID      string                 `json:"id" yaml:"event_id" validate:"omitempty,max=100"`
	Title        string                 `json:"title" yaml:"title" validate:"required,max=255"`
	Summary      string                 `json:"summary" yaml:"summary"`
	Content      string                 `json:"content" yaml:"content"`
	Category     string                 `json:"category" yaml:"category" validate:"required,oneof=seminar webinar press_release exhibition other"`
	Status       string                 `json:"status" yaml:"status" validate:"omitempty,oneof=draft published archived"`
	EventDate    string                 `json:"event_date" yaml:"event_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate      string                 `json:"end_date" yaml:"end_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	CoverImageID string                 `json:"cover_image_id" yaml:"cover_image_id" validate:"max=150"`
	HeroImageID  string                 `json:"hero_image_id" yaml:"hero_image_id" validate:"max=150"`
	PageSlug     string                 `json:"page_slug" yaml:"page_slug" validate:"max=100"`
	Gallery      []string               `json:"gallery" yaml:"gallery"`
	SEO          EventSEO               `json:"seo" yaml:"seo"`
	AIO          map[string]interface{} `json:"aio" yaml:"aio"`
}

// EventService 提供活动列表、详情与后台维护。
type EventService struct {
	store    EventStore
	renderer *content.Renderer
	log      *logger.Logger
	newID    func() string
}

// NewEventService 使用给定的存储策略创建服务。
func NewEventService(store EventStore, log *logger.Logger) *EventService {
	if log == nil {
		log = logger.Nop()
	}
	return &EventService{
		store:    store,
		renderer: content.NewRenderer(),
		log:      log,
		newID: func() string {
			return "event_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// List 返回分页后的活动摘要。
func (s *EventService) List(ctx context.Context, params ListParams) (EventList, error) {
	params = params.Normalize()
	events, total, err := s.store.List(ctx, params)
	if err != nil {
		return EventList{}, err
	}
	items := make([]EventSummary, 0, len(events))
	for _, e := range events {
		items = append(items, toEventSummary(e))
	}
	return EventList{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		HasMore:  hasMore(params.Page, params.PageSize, len(items), total),
	}, nil
}

// Get 按活动 ID 查询详情。
func (s *EventService) Get(ctx context.Context, id string) (*EventDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEventNotFound
	}
	event, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDetail(*event), nil
}

// Create 新建活动，未提供 ID 时自动生成。
func (s *EventService) Create(ctx context.Context, input EventInput) (*EventDetail, error) {
	event, err := s.buildEvent(input)
	if err != nil {
		return nil, err
	}
	if event.EventID == "" {
		event.EventID = s.newID()
	}
	if event.PageSlug == "" {
		event.PageSlug = event.EventID
	}
	if _, err := s.store.Get(ctx, event.EventID); err == nil {
		return nil, &ValidationError{Errors: []FieldError{{Field: "id", Rule: "unique", Message: "活動 ID 已存在"}}}
	} else if !errors.Is(err, ErrEventNotFound) {
		return nil, err
	}
	if err := s.store.Create(ctx, event); err != nil {
		return nil, err
	}
	s.log.Info("event created", "event_id", event.EventID)
	return s.toDetail(*event), nil
}

// Update 整体替换活动内容，ID 以路径参数为准。
func (s *EventService) Update(ctx context.Context, id string, input EventInput) (*EventDetail, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.EventID = existing.EventID
	event, err := s.buildEvent(input)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt
	if event.PageSlug == "" {
		event.PageSlug = existing.PageSlug
	}
	if err := s.store.Update(ctx, event); err != nil {
		return nil, err
	}
	s.log.Info("event updated", "event_id", event.EventID)
	return s.toDetail(*event), nil
}

// Delete 删除活动。
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("event deleted", "event_id", id)
	return nil
}

func (s *EventService) buildEvent(input EventInput) (*db.Event, error) {
	input.EventID = strings.TrimSpace(input.EventID)
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Status = strings.TrimSpace(input.Status)
	input.EventDate = strings.TrimSpace(input.EventDate)
	input.EndDate = strings.TrimSpace(input.EndDate)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	eventDate, err := time.Parse(time.RFC3339, input.EventDate)
	if err != nil {
		return nil, err
	}
	event := &db.Event{
		EventID:      input.EventID,
		Title:        input.Title,
		Summary:      strings.TrimSpace(input.Summary),
		Content:      input.Content,
		Category:     input.Category,
		Status:       input.Status,
		EventDate:    eventDate.UTC(),
		CoverImageID: strings.TrimSpace(input.CoverImageID),
		HeroImageID:  strings.TrimSpace(input.HeroImageID),
		PageSlug:     strings.TrimSpace(input.PageSlug),
	}
	if event.Status == "" {
		event.Status = db.EventStatusDraft
	}
	if input.EndDate != "" {
		endDate, err := time.Parse(time.RFC3339, input.EndDate)
		if err != nil {
			return nil, err
		}
		endDate = endDate.UTC()
		event.EndDate = &endDate
	}
	if len(input.Gallery) > 0 {
		if event.Gallery, err = marshalJSON(input.Gallery); err != nil {
			return nil, err
		}
	}
	if event.SEO, err = marshalJSON(input.SEO); err != nil {
		return nil, err
	}
	if len(input.AIO) > 0 {
		if event.AIO, err = marshalJSON(input.AIO); err != nil {
			return nil, err
		}
	}
	return event, nil
}

func marshalJSON(value interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return datatypes.JSON(data), nil
}

func toEventSummary(e db.Event) EventSummary {
	return EventSummary{
		ID:           e.EventID,
		Title:        e.Title,
		Summary:      e.Summary,
		Category:     e.Category,
		EventDate:    formatISO(e.EventDate),
		CoverImageID: e.CoverImageID,
		PageSlug:     e.PageSlug,
	}
}

func (s *EventService) toDetail(e db.Event) *EventDetail {
	detail := &EventDetail{
		ID:           e.EventID,
		Title:        e.Title,
		Summary:      e.Summary,
		Category:     e.Category,
		Status:       e.Status,
		EventDate:    formatISO(e.EventDate),
		CoverImageID: e.CoverImageID,
		HeroImageID:  e.HeroImageID,
		PageSlug:     e.PageSlug,
		Content:      e.Content,
		SEO:          EventSEO{Keywords: []string{}},
		CreatedAt:    formatISO(e.CreatedAt),
		UpdatedAt:    formatISO(e.UpdatedAt),
	}
	if e.EndDate != nil {
		detail.EndDate = formatISO(*e.EndDate)
	}
	if len(e.Gallery) > 0 {
		if err := json.Unmarshal(e.Gallery, &detail.Gallery); err != nil {
			s.log.Warn("event gallery is not a string list", "event_id", e.EventID, "error", err)
		}
	}
	if len(e.SEO) > 0 {
		if err := json.Unmarshal(e.SEO, &detail.SEO); err != nil {
			s.log.Warn("event seo is malformed", "event_id", e.EventID, "error", err)
		}
		if detail.SEO.Keywords == nil {
			detail.SEO.Keywords = []string{}
		}
	}
	if len(e.AIO) > 0 && string(e.AIO) != "null" {
		detail.AIO = json.RawMessage(e.AIO)
	}
	html, err := s.renderer.Render(e.Content)
	if err != nil {
		s.log.Warn("render event content failed", "event_id", e.EventID, "error", err)
	}
	detail.ContentHTML = html
	return detail
}
