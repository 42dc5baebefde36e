package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/pkg/logger"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseQuestion{},
		&model.ProgressRecord{},
		&model.QuizAttempt{},
		&model.Certificate{},
		&model.Policy{},
		&model.PolicyAcknowledgment{},
		&model.Announcement{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role model.UserRole, department string) *model.User {
	t.Helper()
	user := &model.User{
		Name:       name,
		Email:      strings.ToLower(name) + "@example.com",
		Password:   "hashed",
		Role:       role,
		Department: department,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createVideoCourse(t *testing.T, db *gorm.DB, title string, hasQuiz bool) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:           title,
		DurationMinutes: 30,
		ContentType:     model.ContentVideo,
		Status:          model.CourseActive,
		Category:        model.CategorySafety,
		VideoSeconds:    600,
		HasQuiz:         hasQuiz,
		PassingScore:    model.DefaultPassingScore,
		MaxAttempts:     model.DefaultMaxAttempts,
		RequireVideo:    true,
		AudienceType:    model.AudienceAll,
	}
	require.NoError(t, db.Create(course).Error)

	if hasQuiz {
		questions := []model.CourseQuestion{
			{CourseID: course.ID, Content: "题目一", Options: []string{"A", "B"}, CorrectIndex: 0, Order: 1},
			{CourseID: course.ID, Content: "题目二", Options: []string{"A", "B"}, CorrectIndex: 1, Order: 2},
			{CourseID: course.ID, Content: "题目三", Options: []string{"A", "B"}, CorrectIndex: 0, Order: 3},
			{CourseID: course.ID, Content: "题目四", Options: []string{"A", "B"}, CorrectIndex: 1, Order: 4},
		}
		require.NoError(t, db.Create(&questions).Error)
	}
	return course
}
