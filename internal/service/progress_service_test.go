package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewCourseRepository(db),
		db,
	)
}

func TestStartCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	user := createUser(t, db, "zhang", model.Employee, "工程部")
	course := createVideoCourse(t, db, "信息安全基础", false)

	record, err := svc.StartCourse(user, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, record.Status)
	require.NotNil(t, record.StartedAt)

	// 幂等：重复开课返回同一条记录
	again, err := svc.StartCourse(user, course.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)

	var count int64
	db.Model(&model.ProgressRecord{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartCourseAccessControl(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	sales := createUser(t, db, "li", model.Employee, "销售部")

	t.Run("草稿课程不可学", func(t *testing.T) {
		draft := createVideoCourse(t, db, "草稿课程", false)
		draft.Status = model.CourseDraft
		require.NoError(t, db.Save(draft).Error)

		_, err := svc.StartCourse(sales, draft.ID)
		assert.ErrorIs(t, err, util.ErrCourseNotOpen)
	})

	t.Run("不在受众范围内", func(t *testing.T) {
		course := createVideoCourse(t, db, "工程部专属", false)
		course.AudienceType = model.AudienceDepartment
		course.Departments = []string{"工程部"}
		require.NoError(t, db.Save(course).Error)

		_, err := svc.StartCourse(sales, course.ID)
		assert.ErrorIs(t, err, util.ErrAccessDenied)
	})

	t.Run("课程不存在", func(t *testing.T) {
		_, err := svc.StartCourse(sales, 9999)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})
}

func TestVideoProgressCompletesCourseWithoutQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	user := createUser(t, db, "wang", model.Employee, "工程部")
	course := createVideoCourse(t, db, "无测验课程", false)

	// 非法观看时长直接拒绝
	_, err := svc.UpdateVideoProgress(user, course.ID, -1, 600)
	assert.ErrorIs(t, err, util.ErrInvalidWatchTime)
	_, err = svc.UpdateVideoProgress(user, course.ID, 30, 0)
	assert.ErrorIs(t, err, util.ErrInvalidWatchTime)

	// 首个上报等价于开课
	record, err := svc.UpdateVideoProgress(user, course.ID, 300, 600)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, record.Status)
	assert.Equal(t, 25, record.Progress)

	// 达到 90% 即看完，无测验课程直接完成
	record, err = svc.UpdateVideoProgress(user, course.ID, 560, 600)
	require.NoError(t, err)
	assert.True(t, record.VideoCompleted)
	assert.Equal(t, model.ProgressCompleted, record.Status)
	assert.Equal(t, 100, record.Progress)
	require.NotNil(t, record.CompletedAt)

	// 完成后的乱序上报不回退任何字段
	record, err = svc.UpdateVideoProgress(user, course.ID, 100, 600)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressCompleted, record.Status)
	assert.Equal(t, 100, record.Progress)
	assert.Equal(t, 560, record.VideoWatchSeconds)
}

func TestSubmitQuizFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	user := createUser(t, db, "zhao", model.Employee, "工程部")
	course := createVideoCourse(t, db, "带测验课程", true)

	// 视频未看完不能答题
	_, _, err := svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{0, 1, 0, 1}})
	assert.ErrorIs(t, err, util.ErrVideoNotCompleted)

	_, err = svc.UpdateVideoProgress(user, course.ID, 600, 600)
	require.NoError(t, err)

	// 第一次：一半正确，50 分不及格
	record, attempt, err := svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{0, 0, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 50, attempt.Score)
	assert.False(t, attempt.Passed)
	assert.Equal(t, 1, record.AttemptCount)
	assert.Equal(t, 50, record.BestScore)
	assert.Equal(t, model.ProgressInProgress, record.Status)

	// 第二次：全对通过，培训完成
	record, attempt, err = svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{0, 1, 0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 100, attempt.Score)
	assert.True(t, attempt.Passed)
	assert.True(t, record.QuizPassed)
	assert.Equal(t, model.ProgressCompleted, record.Status)
	assert.Equal(t, 100, record.Progress)

	// 默认禁止重考
	_, _, err = svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{0, 1, 0, 1}})
	assert.ErrorIs(t, err, util.ErrAlreadyPassed)

	// 两次提交都留了快照
	attempts, err := svc.ProgressRepo.ListAttempts(record.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitQuizAttemptExhaustion(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	user := createUser(t, db, "qian", model.Employee, "工程部")
	course := createVideoCourse(t, db, "三次机会", true)

	_, err := svc.UpdateVideoProgress(user, course.ID, 600, 600)
	require.NoError(t, err)

	wrong := QuizSubmission{Answers: []int{1, 0, 1, 0}} // 全错
	var record *model.ProgressRecord
	for i := 0; i < model.DefaultMaxAttempts; i++ {
		record, _, err = svc.SubmitQuiz(user, course.ID, wrong)
		require.NoError(t, err)
	}

	assert.Equal(t, model.DefaultMaxAttempts, record.AttemptCount)
	assert.Equal(t, model.ProgressFailed, record.Status)

	_, _, err = svc.SubmitQuiz(user, course.ID, wrong)
	assert.ErrorIs(t, err, util.ErrAttemptLimitReached)
}

func TestRestart(t *testing.T) {
	db := newTestDB(t)
	svc := newProgressService(db)
	user := createUser(t, db, "sun", model.Employee, "工程部")

	t.Run("重学清零视频保留答题次数", func(t *testing.T) {
		course := createVideoCourse(t, db, "可重学课程", true)
		_, err := svc.UpdateVideoProgress(user, course.ID, 600, 600)
		require.NoError(t, err)
		_, _, err = svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{1, 0, 1, 0}})
		require.NoError(t, err)

		record, err := svc.Restart(user, course.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ProgressInProgress, record.Status)
		assert.Equal(t, 0, record.Progress)
		assert.Equal(t, 0, record.VideoWatchSeconds)
		assert.False(t, record.VideoCompleted)
		assert.Equal(t, 1, record.AttemptCount)
	})

	t.Run("已完成的培训不允许重置", func(t *testing.T) {
		course := createVideoCourse(t, db, "已完成课程", false)
		_, err := svc.UpdateVideoProgress(user, course.ID, 600, 600)
		require.NoError(t, err)

		_, err = svc.Restart(user, course.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyCompleted)
	})

	t.Run("无学习记录", func(t *testing.T) {
		course := createVideoCourse(t, db, "未开课课程", false)
		_, err := svc.Restart(user, course.ID)
		assert.ErrorIs(t, err, util.ErrProgressNotFound)
	})
}
