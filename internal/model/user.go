package model

import (
	"time"
)

type UserRole string

const (
	Employee   UserRole = "employee"
	Compliance UserRole = "compliance"
	Admin      UserRole = "admin"
)

// IsComplianceStaff 合规专员与管理员拥有全部课程/制度的管理与查看权限
func (r UserRole) IsComplianceStaff() bool {
	return r == Compliance || r == Admin
}

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'employee'" json:"role"`
	Department string    `gorm:"size:100;index" json:"department"`
	Position   string    `gorm:"size:100" json:"position"`
	Language   string    `gorm:"size:10;default:'zh'" json:"language"`
	Avatar     string    `gorm:"size:255" json:"avatar"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen   time.Time `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
