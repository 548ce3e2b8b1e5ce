package db

import (
	"time"

	"gorm.io/datatypes"
)

// Page 保存内容构建流程产出的页面文档，服务端只读。
type Page struct {
	ID          uint           `gorm:"primaryKey"`
	Slug        string         `gorm:"size:100;uniqueIndex;not null"`
	Module      string         `gorm:"size:100;index;not null"`
	Template    *string        `gorm:"size:100"`
	SEO         datatypes.JSON `gorm:"column:seo"`
	URLMapping  datatypes.JSON `gorm:"column:url_mapping"`
	Content     string         `gorm:"type:text"`
	ContentHTML string         `gorm:"column:content_html;type:text"`
	Layout      datatypes.JSON
	AIO         datatypes.JSON `gorm:"column:aio"`
	GeneratedAt string         `gorm:"size:40"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Asset 对应资源清单中的一张图片。
type Asset struct {
	ID             uint           `gorm:"primaryKey"`
	ImageID        string         `gorm:"column:image_id;size:150;uniqueIndex;not null"`
	OriginalPath   string         `gorm:"not null"`
	NormalizedPath string         `gorm:"not null"`
	Variants       datatypes.JSON
	Alt            string
	Width          int
	Height         int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
