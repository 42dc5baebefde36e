package model

import (
	"time"
)

// Announcement 全员公告
// swagger:model Announcement
type Announcement struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	Body        string     `gorm:"type:text" json:"body"`
	Pinned      bool       `gorm:"default:false;index" json:"pinned"`
	Published   bool       `gorm:"default:false;index" json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedBy   uint       `gorm:"index" json:"createdBy"`
}

func (Announcement) TableName() string {
	return "announcements"
}
