package service

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCourseService(db *gorm.DB) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		nil, // 存储
		nil, // Redis 缓存可选
		&config.Config{},
	)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestValidateQuiz(t *testing.T) {
	valid := []CourseQuestionReq{
		{Content: "题目", Options: []string{"A", "B", "C"}, CorrectIndex: 1},
	}

	assert.NoError(t, validateQuiz(valid, 70))
	assert.ErrorIs(t, validateQuiz(valid, 101), util.ErrValidation)
	assert.ErrorIs(t, validateQuiz(valid, -1), util.ErrValidation)
	assert.ErrorIs(t, validateQuiz([]CourseQuestionReq{{Content: "", Options: []string{"A", "B"}}}, 70), util.ErrValidation)
	assert.ErrorIs(t, validateQuiz([]CourseQuestionReq{{Content: "题目", Options: []string{"A"}}}, 70), util.ErrValidation)
	assert.ErrorIs(t, validateQuiz([]CourseQuestionReq{{Content: "题目", Options: []string{"A", "B"}, CorrectIndex: 2}}, 70), util.ErrValidation)
	assert.ErrorIs(t, validateQuiz([]CourseQuestionReq{{Content: "题目", Options: []string{"A", "B"}, CorrectIndex: -1}}, 70), util.ErrValidation)
}

func TestCreateCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newCourseService(db)

	t.Run("带测验课程", func(t *testing.T) {
		course, err := svc.CreateCourse(1, CourseReq{
			Title:           strPtr("信息安全意识"),
			DurationMinutes: intPtr(45),
			ContentType:     strPtr("video"),
			Category:        strPtr("security"),
			IsMandatory:     boolPtr(true),
			Questions: &[]CourseQuestionReq{
				{Content: "题目一", Options: []string{"对", "错"}, CorrectIndex: 0},
				{Content: "题目二", Options: []string{"对", "错"}, CorrectIndex: 1},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, model.CourseDraft, course.Status)
		assert.True(t, course.HasQuiz)
		assert.Equal(t, model.DefaultPassingScore, course.PassingScore)
		assert.Equal(t, model.DefaultMaxAttempts, course.MaxAttempts)
		assert.Len(t, course.Questions, 2)
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		_, err := svc.CreateCourse(1, CourseReq{ContentType: strPtr("video")})
		assert.ErrorIs(t, err, util.ErrValidation)

		_, err = svc.CreateCourse(1, CourseReq{Title: strPtr("无时长"), ContentType: strPtr("video")})
		assert.ErrorIs(t, err, util.ErrValidation)

		_, err = svc.CreateCourse(1, CourseReq{
			Title:           strPtr("非法类型"),
			DurationMinutes: intPtr(10),
			ContentType:     strPtr("podcast"),
		})
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("非法测验配置", func(t *testing.T) {
		_, err := svc.CreateCourse(1, CourseReq{
			Title:           strPtr("坏测验"),
			DurationMinutes: intPtr(10),
			ContentType:     strPtr("video"),
			Questions: &[]CourseQuestionReq{
				{Content: "题目", Options: []string{"A"}, CorrectIndex: 0},
			},
		})
		assert.ErrorIs(t, err, util.ErrValidation)
	})
}

func TestListAccessibleCourses(t *testing.T) {
	db := newTestDB(t)
	svc := newCourseService(db)

	all := createVideoCourse(t, db, "全员课程", false)
	deptOnly := createVideoCourse(t, db, "工程部课程", false)
	deptOnly.AudienceType = model.AudienceDepartment
	deptOnly.Departments = []string{"工程部"}
	require.NoError(t, db.Save(deptOnly).Error)

	draft := createVideoCourse(t, db, "草稿", false)
	draft.Status = model.CourseDraft
	require.NoError(t, db.Save(draft).Error)

	t.Run("员工按受众过滤", func(t *testing.T) {
		sales := createUser(t, db, "salesa", model.Employee, "销售部")
		courses, err := svc.ListAccessibleCourses(sales)
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, all.ID, courses[0].ID)
	})

	t.Run("合规专员看到全部上线课程", func(t *testing.T) {
		staff := createUser(t, db, "staffa", model.Compliance, "合规部")
		courses, err := svc.ListAccessibleCourses(staff)
		require.NoError(t, err)
		assert.Len(t, courses, 2)
	})
}

func TestProcessScheduledPublishes(t *testing.T) {
	db := newTestDB(t)
	svc := newCourseService(db)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due := createVideoCourse(t, db, "到点上线", false)
	due.Status = model.CourseDraft
	due.PublishAt = &past
	require.NoError(t, db.Save(due).Error)

	notYet := createVideoCourse(t, db, "还没到点", false)
	notYet.Status = model.CourseDraft
	notYet.PublishAt = &future
	require.NoError(t, db.Save(notYet).Error)

	require.NoError(t, svc.ProcessScheduledPublishes())

	// 每次查询用全新的目标结构，避免上一次的主键被带入查询条件
	var published model.Course
	require.NoError(t, db.First(&published, due.ID).Error)
	assert.Equal(t, model.CourseActive, published.Status)

	var pending model.Course
	require.NoError(t, db.First(&pending, notYet.ID).Error)
	assert.Equal(t, model.CourseDraft, pending.Status)
}
