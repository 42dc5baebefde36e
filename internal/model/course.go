package model

import (
	"time"

	"gorm.io/datatypes"
)

type CourseCategory string

const (
	CategorySafety   CourseCategory = "safety"
	CategoryPrivacy  CourseCategory = "privacy"
	CategoryConduct  CourseCategory = "conduct"
	CategorySecurity CourseCategory = "security"
	CategoryOther    CourseCategory = "other"
)

type ContentType string

const (
	ContentVideo       ContentType = "video"
	ContentYouTube     ContentType = "youtube"
	ContentInteractive ContentType = "interactive"
)

type CourseStatus string

const (
	CourseDraft    CourseStatus = "draft"
	CourseActive   CourseStatus = "active"
	CourseInactive CourseStatus = "inactive"
	CourseArchived CourseStatus = "archived"
)

type AudienceType string

const (
	AudienceAll        AudienceType = "all"
	AudienceDepartment AudienceType = "department"
	AudienceRole       AudienceType = "role"
)

const (
	DefaultPassingScore = 70
	DefaultMaxAttempts  = 3
)

// swagger:model Course
type Course struct {
	BaseModel
	Title           string         `gorm:"size:200;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Category        CourseCategory `gorm:"size:20;default:'other';index" json:"category"`
	DurationMinutes int            `gorm:"not null" json:"durationMinutes"`
	ContentType     ContentType    `gorm:"size:20;not null" json:"contentType"`
	Status          CourseStatus   `gorm:"size:20;default:'draft';index" json:"status"`
	IsMandatory     bool           `gorm:"default:false" json:"isMandatory"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	PublishAt       *time.Time     `json:"publishAt,omitempty"` // 定时上线时间

	// 内容载荷：三选一（interactive 两者皆空）
	VideoURL     string `gorm:"size:500" json:"videoUrl,omitempty"`
	VideoSeconds int    `gorm:"default:0" json:"videoSeconds,omitempty"` // ffmpeg 探测出的视频时长
	YouTubeID    string `gorm:"size:50" json:"youtubeId,omitempty"`

	// 测验配置
	HasQuiz      bool `gorm:"default:false" json:"hasQuiz"`
	PassingScore int  `gorm:"default:70" json:"passingScore"`
	MaxAttempts  int  `gorm:"default:3" json:"maxAttempts"`
	AllowRetakes bool `gorm:"default:false" json:"allowRetakes"` // 已通过后是否允许重考
	RequireVideo bool `gorm:"default:true" json:"requireVideo"`  // 测验前是否要求看完视频

	// 目标受众
	AudienceType AudienceType                 `gorm:"size:20;default:'all'" json:"audienceType"`
	Departments  datatypes.JSONSlice[string]  `json:"departments,omitempty"`
	Roles        datatypes.JSONSlice[string]  `json:"roles,omitempty"`

	Questions []CourseQuestion `gorm:"foreignKey:CourseID" json:"questions,omitempty"`
	CreatedBy uint             `gorm:"index" json:"createdBy"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseQuestion
type CourseQuestion struct {
	BaseModel
	CourseID     uint                        `gorm:"index;not null" json:"courseId"`
	Content      string                      `gorm:"type:text;not null" json:"content"`
	Options      datatypes.JSONSlice[string] `json:"options"`
	CorrectIndex int                         `gorm:"not null" json:"-"` // 不下发给学员端
	Order        int                         `gorm:"default:0" json:"order"`
}

func (CourseQuestion) TableName() string {
	return "course_questions"
}
