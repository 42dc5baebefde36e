package model

import (
	"time"
)

type PolicyStatus string

const (
	PolicyDraft    PolicyStatus = "draft"
	PolicyActive   PolicyStatus = "active"
	PolicyArchived PolicyStatus = "archived"
)

// Policy 公司规章制度文档
// swagger:model Policy
type Policy struct {
	UUIDBase
	Title       string         `gorm:"size:200;not null" json:"title"`
	Body        string         `gorm:"type:longtext" json:"body"`
	Version     string         `gorm:"size:20;default:'1.0'" json:"version"`
	Category    CourseCategory `gorm:"size:20;default:'other';index" json:"category"`
	Status      PolicyStatus   `gorm:"size:20;default:'draft';index" json:"status"`
	RequiresAck bool           `gorm:"default:true" json:"requiresAck"`
	EffectiveAt *time.Time     `json:"effectiveAt,omitempty"`
	CreatedBy   uint           `gorm:"index" json:"createdBy"`
}

func (Policy) TableName() string {
	return "policies"
}

// PolicyAcknowledgment 每个 (制度, 用户) 唯一一条确认记录
// swagger:model PolicyAcknowledgment
type PolicyAcknowledgment struct {
	BaseModel
	PolicyID string    `gorm:"size:36;not null;uniqueIndex:idx_ack_policy_user" json:"policyId"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_ack_policy_user" json:"userId"`
	AckedAt  time.Time `gorm:"not null" json:"ackedAt"`
	Version  string    `gorm:"size:20" json:"version"` // 确认时的制度版本
}

func (PolicyAcknowledgment) TableName() string {
	return "policy_acknowledgments"
}
