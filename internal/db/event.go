package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusArchived  = "archived"
)

const (
	EventCategorySeminar      = "seminar"
	EventCategoryWebinar      = "webinar"
	EventCategoryPressRelease = "press_release"
	EventCategoryExhibition   = "exhibition"
	EventCategoryOther        = "other"
)

// EventStatuses 与 EventCategories 列出允许的枚举值，顺序即展示顺序。
var (
	EventStatuses   = []string{EventStatusDraft, EventStatusPublished, EventStatusArchived}
	EventCategories = []string{EventCategorySeminar, EventCategoryWebinar, EventCategoryPressRelease, EventCategoryExhibition, EventCategoryOther}
)

// Event 表示活动、研讨会或新闻稿。
type Event struct {
	ID           uint           `gorm:"primaryKey"`
	EventID      string         `gorm:"column:event_id;size:100;uniqueIndex;not null"`
	Title        string         `gorm:"size:255;not null"`
	Summary      string         `gorm:"type:text"`
	Content      string         `gorm:"type:text"`
	Category     string         `gorm:"size:30;index;not null"`
	Status       string         `gorm:"size:20;index;not null;default:draft"`
	EventDate    time.Time      `gorm:"index;not null"`
	EndDate      *time.Time
	CoverImageID string         `gorm:"size:150"`
	HeroImageID  string         `gorm:"size:150"`
	PageSlug     string         `gorm:"size:100;index"`
	Gallery      datatypes.JSON
	SEO          datatypes.JSON `gorm:"column:seo"`
	AIO          datatypes.JSON `gorm:"column:aio"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidEventStatus reports whether value is one of EventStatuses.
func IsValidEventStatus(value string) bool {
	return contains(EventStatuses, value)
}

// IsValidEventCategory reports whether value is one of EventCategories.
func IsValidEventCategory(value string) bool {
	return contains(EventCategories, value)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
