package model

import (
	"time"
)

// Certificate 培训完成证书。签发时对用户/课程字段做快照，
// 课程后续被修改或删除不影响已签发的证书。
// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID   uint `gorm:"not null;uniqueIndex:idx_cert_user_course" json:"userId"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_cert_user_course" json:"courseId"`

	CertificateID string `gorm:"size:40;uniqueIndex;not null" json:"certificateId"`

	// 签发时刻的快照字段
	UserName        string         `gorm:"size:100;not null" json:"userName"`
	CourseTitle     string         `gorm:"size:200;not null" json:"courseTitle"`
	Category        CourseCategory `gorm:"size:20" json:"category"`
	Score           int            `gorm:"not null" json:"score"`
	PassingScore    int            `gorm:"not null" json:"passingScore"`
	DurationMinutes int            `gorm:"not null" json:"durationMinutes"`
	CompletedAt     time.Time      `gorm:"not null" json:"completedAt"`

	IssuedAt   time.Time  `gorm:"not null" json:"issuedAt"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	IsValid         bool       `gorm:"default:true" json:"isValid"`
	InvalidReason   string     `gorm:"size:255" json:"invalidReason,omitempty"`
	InvalidatedAt   *time.Time `json:"invalidatedAt,omitempty"`
	DownloadCount   int        `gorm:"default:0" json:"downloadCount"`
	LastDownloadAt  *time.Time `json:"lastDownloadAt,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// IsCurrentlyValid 证书有效且未过期
func (c *Certificate) IsCurrentlyValid(now time.Time) bool {
	if !c.IsValid {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}
