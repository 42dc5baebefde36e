package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVideoProgress(t *testing.T) {
	t.Run("观看比例折算进度", func(t *testing.T) {
		record := &model.ProgressRecord{}
		applyVideoProgress(record, 300, 1000) // 30%

		assert.Equal(t, 300, record.VideoWatchSeconds)
		assert.Equal(t, 15, record.Progress) // 30% * 0.5
		assert.False(t, record.VideoCompleted)
	})

	t.Run("达到90%即视为看完", func(t *testing.T) {
		record := &model.ProgressRecord{}
		applyVideoProgress(record, 900, 1000)

		assert.True(t, record.VideoCompleted)
		assert.Equal(t, 50, record.Progress)
	})

	t.Run("观看秒数单调不减", func(t *testing.T) {
		record := &model.ProgressRecord{}
		applyVideoProgress(record, 600, 1000)
		applyVideoProgress(record, 200, 1000) // 乱序上报

		assert.Equal(t, 600, record.VideoWatchSeconds)
		assert.Equal(t, 30, record.Progress)
	})

	t.Run("进度不回退", func(t *testing.T) {
		record := &model.ProgressRecord{Progress: 80}
		applyVideoProgress(record, 950, 1000)

		assert.True(t, record.VideoCompleted)
		assert.Equal(t, 80, record.Progress)
	})

	t.Run("看完状态不因后续上报回退", func(t *testing.T) {
		record := &model.ProgressRecord{}
		applyVideoProgress(record, 1000, 1000)
		require.True(t, record.VideoCompleted)

		applyVideoProgress(record, 10, 1000)
		assert.True(t, record.VideoCompleted)
		assert.Equal(t, 1000, record.VideoWatchSeconds)
	})
}

func TestCanTakeQuiz(t *testing.T) {
	quizCourse := func() *model.Course {
		return &model.Course{
			ContentType:  model.ContentVideo,
			HasQuiz:      true,
			RequireVideo: true,
			MaxAttempts:  3,
		}
	}

	t.Run("无测验课程", func(t *testing.T) {
		course := quizCourse()
		course.HasQuiz = false
		err := canTakeQuiz(course, &model.ProgressRecord{VideoCompleted: true})
		assert.ErrorIs(t, err, util.ErrNoQuiz)
	})

	t.Run("视频未看完", func(t *testing.T) {
		err := canTakeQuiz(quizCourse(), &model.ProgressRecord{})
		assert.ErrorIs(t, err, util.ErrVideoNotCompleted)
	})

	t.Run("互动课程不要求视频", func(t *testing.T) {
		course := quizCourse()
		course.ContentType = model.ContentInteractive
		err := canTakeQuiz(course, &model.ProgressRecord{})
		assert.NoError(t, err)
	})

	t.Run("不强制视频时直接可考", func(t *testing.T) {
		course := quizCourse()
		course.RequireVideo = false
		err := canTakeQuiz(course, &model.ProgressRecord{})
		assert.NoError(t, err)
	})

	t.Run("次数用尽", func(t *testing.T) {
		record := &model.ProgressRecord{VideoCompleted: true, AttemptCount: 3}
		err := canTakeQuiz(quizCourse(), record)
		assert.ErrorIs(t, err, util.ErrAttemptLimitReached)
	})

	t.Run("已通过且禁止重考", func(t *testing.T) {
		record := &model.ProgressRecord{VideoCompleted: true, QuizPassed: true, AttemptCount: 1}
		err := canTakeQuiz(quizCourse(), record)
		assert.ErrorIs(t, err, util.ErrAlreadyPassed)
	})

	t.Run("已通过但允许重考", func(t *testing.T) {
		course := quizCourse()
		course.AllowRetakes = true
		// 重考不受次数限制约束
		record := &model.ProgressRecord{VideoCompleted: true, QuizPassed: true, AttemptCount: 3}
		err := canTakeQuiz(course, record)
		assert.NoError(t, err)
	})
}

func TestScoreQuiz(t *testing.T) {
	questions := []model.CourseQuestion{
		{CorrectIndex: 0},
		{CorrectIndex: 1},
		{CorrectIndex: 2},
		{CorrectIndex: 3},
	}

	t.Run("四分之三正确四舍五入为75", func(t *testing.T) {
		score, results, err := scoreQuiz(questions, []int{0, 1, 2, 0})
		require.NoError(t, err)
		assert.Equal(t, 75, score)
		require.Len(t, results, 4)
		assert.True(t, results[0].Correct)
		assert.False(t, results[3].Correct)
	})

	t.Run("三分之一正确四舍五入为33", func(t *testing.T) {
		score, _, err := scoreQuiz(questions[:3], []int{0, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, 33, score)
	})

	t.Run("三分之二正确四舍五入为67", func(t *testing.T) {
		score, _, err := scoreQuiz(questions[:3], []int{0, 1, 0})
		require.NoError(t, err)
		assert.Equal(t, 67, score)
	})

	t.Run("答案数量不匹配", func(t *testing.T) {
		_, _, err := scoreQuiz(questions, []int{0})
		assert.ErrorIs(t, err, util.ErrAnswerCountMismatch)
	})

	t.Run("无题目", func(t *testing.T) {
		_, _, err := scoreQuiz(nil, nil)
		assert.ErrorIs(t, err, util.ErrNoQuiz)
	})
}

func TestMarkCompleted(t *testing.T) {
	now := time.Now()
	record := &model.ProgressRecord{Status: model.ProgressInProgress, Progress: 60}
	markCompleted(record, now)

	assert.Equal(t, model.ProgressCompleted, record.Status)
	assert.Equal(t, 100, record.Progress)
	require.NotNil(t, record.CompletedAt)

	// 再次标记不覆盖首次完成时间
	later := now.Add(time.Hour)
	markCompleted(record, later)
	assert.True(t, record.CompletedAt.Equal(now))
}
