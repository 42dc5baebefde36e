package model

import (
	"time"

	"gorm.io/datatypes"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressFailed     ProgressStatus = "failed"
)

// ProgressRecord 每个 (用户, 课程) 唯一一条，记录培训进度
// swagger:model ProgressRecord
type ProgressRecord struct {
	BaseModel
	UserID   uint `gorm:"not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_progress_user_course" json:"courseId"`

	Status   ProgressStatus `gorm:"size:20;default:'not_started'" json:"status"`
	Progress int            `gorm:"default:0" json:"progress"` // 0~100，单调不减

	VideoWatchSeconds int  `gorm:"default:0" json:"videoWatchSeconds"` // 历史最大值，不回退
	VideoCompleted    bool `gorm:"default:false" json:"videoCompleted"`

	AttemptCount int  `gorm:"default:0" json:"attemptCount"`
	BestScore    int  `gorm:"default:0" json:"bestScore"`
	QuizPassed   bool `gorm:"default:false" json:"quizPassed"` // 一旦为 true 不再回退

	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`

	Attempts []QuizAttempt `gorm:"foreignKey:ProgressID" json:"attempts,omitempty"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// QuizAttempt 一次测验提交的评分快照
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	ProgressID    uint           `gorm:"index;not null" json:"progressId"`
	UserID        uint           `gorm:"index;not null" json:"userId"`
	CourseID      uint           `gorm:"index;not null" json:"courseId"`
	AttemptNumber int            `gorm:"not null" json:"attemptNumber"`
	Score         int            `gorm:"not null" json:"score"`
	Passed        bool           `gorm:"not null" json:"passed"`
	AnswerDetail  datatypes.JSON `json:"answerDetail"` // 每题选项与对错
	ElapsedSecs   int            `gorm:"default:0" json:"elapsedSeconds"`
	SubmittedAt   time.Time      `json:"submittedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AnswerResult 单题判分结果，序列化进 QuizAttempt.AnswerDetail
type AnswerResult struct {
	QuestionID    uint `json:"questionId"`
	SelectedIndex int  `json:"selectedIndex"`
	Correct       bool `json:"correct"`
}
