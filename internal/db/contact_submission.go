package db

import "time"

// ContactSubmission 记录联系表单提交，只插入不修改。
type ContactSubmission struct {
	ID           uint      `gorm:"primaryKey"`
	SubmissionID string    `gorm:"column:submission_id;size:50;uniqueIndex;not null"`
	Name         string    `gorm:"size:100;not null"`
	Email        string    `gorm:"size:255;index;not null"`
	Phone        string    `gorm:"size:20"`
	Company      *string   `gorm:"size:100"`
	Message      string    `gorm:"type:text;not null"`
	SourcePage   string    `gorm:"size:255"`
	IPAddress    *string   `gorm:"column:ip_address;size:64"`
	CreatedAt    time.Time `gorm:"index"`
}
