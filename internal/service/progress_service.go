package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"compliance_lms_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// 观看时长达到 90% 即视为看完视频；视频占课程总进度的一半
const (
	videoCompletePercent = 90.0
	videoProgressWeight  = 0.5
	videoCompleteFloor   = 50
)

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	DB           *gorm.DB
}

func NewProgressService(progressRepo *repository.ProgressRepository, courseRepo *repository.CourseRepository, db *gorm.DB) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		DB:           db,
	}
}

func courseMaxAttempts(course *model.Course) int {
	if course.MaxAttempts > 0 {
		return course.MaxAttempts
	}
	return model.DefaultMaxAttempts
}

func coursePassingScore(course *model.Course) int {
	if course.PassingScore > 0 {
		return course.PassingScore
	}
	return model.DefaultPassingScore
}

// applyVideoProgress 套用一次观看进度上报。
// 观看秒数只升不降，progress 单调不减，乱序/重放的上报天然被吸收。
func applyVideoProgress(record *model.ProgressRecord, watchedSeconds, totalSeconds int) {
	if watchedSeconds > record.VideoWatchSeconds {
		record.VideoWatchSeconds = watchedSeconds
	}
	if totalSeconds <= 0 {
		return
	}

	watchPercent := float64(watchedSeconds) / float64(totalSeconds) * 100
	if watchPercent >= videoCompletePercent {
		record.VideoCompleted = true
		if record.Progress < videoCompleteFloor {
			record.Progress = videoCompleteFloor
		}
	} else {
		computed := int(watchPercent * videoProgressWeight)
		if record.Progress < computed {
			record.Progress = computed
		}
	}
}

// canTakeQuiz 测验资格检查，不满足时返回具体原因
func canTakeQuiz(course *model.Course, record *model.ProgressRecord) error {
	if !course.HasQuiz {
		return util.ErrNoQuiz
	}
	if course.RequireVideo && course.ContentType != model.ContentInteractive && !record.VideoCompleted {
		return util.ErrVideoNotCompleted
	}
	if record.QuizPassed {
		if !course.AllowRetakes {
			return util.ErrAlreadyPassed
		}
		return nil
	}
	if record.AttemptCount >= courseMaxAttempts(course) {
		return util.ErrAttemptLimitReached
	}
	return nil
}

// scoreQuiz 按正确题数四舍五入计算百分制分数
func scoreQuiz(questions []model.CourseQuestion, answers []int) (int, []model.AnswerResult, error) {
	if len(questions) == 0 {
		return 0, nil, util.ErrNoQuiz
	}
	if len(answers) != len(questions) {
		return 0, nil, util.ErrAnswerCountMismatch
	}

	correct := 0
	results := make([]model.AnswerResult, len(questions))
	for i, q := range questions {
		ok := answers[i] == q.CorrectIndex
		if ok {
			correct++
		}
		results[i] = model.AnswerResult{
			QuestionID:    q.ID,
			SelectedIndex: answers[i],
			Correct:       ok,
		}
	}

	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return score, results, nil
}

// markCompleted 完成态一旦写入不再回退
func markCompleted(record *model.ProgressRecord, now time.Time) {
	record.Status = model.ProgressCompleted
	record.Progress = 100
	if record.CompletedAt == nil {
		record.CompletedAt = &now
	}
}

func (s *ProgressService) checkCourseOpen(user *model.User, course *model.Course) error {
	if course.Status != model.CourseActive {
		return util.ErrCourseNotOpen
	}
	if !user.Role.IsComplianceStaff() && !CanAccessCourse(user, course) {
		return util.ErrAccessDenied
	}
	return nil
}

// StartCourse 幂等开课：已有记录直接返回，否则建一条 in_progress 记录
func (s *ProgressService) StartCourse(user *model.User, courseID uint) (*model.ProgressRecord, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseOpen(user, course); err != nil {
		return nil, err
	}

	now := time.Now()
	existing, err := s.ProgressRepo.FindByUserAndCourse(user.ID, courseID)
	if err == nil {
		existing.LastAccessedAt = &now
		if err := s.ProgressRepo.Save(s.DB, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record := &model.ProgressRecord{
		UserID:         user.ID,
		CourseID:       courseID,
		Status:         model.ProgressInProgress,
		StartedAt:      &now,
		LastAccessedAt: &now,
	}
	if err := s.ProgressRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateVideoProgress 观看进度上报。首个上报等价于开课。
// 整个读-改-写在事务 + 行锁内完成，并发上报不会互相覆盖。
func (s *ProgressService) UpdateVideoProgress(user *model.User, courseID uint, watchedSeconds, totalSeconds int) (*model.ProgressRecord, error) {
	if watchedSeconds < 0 || totalSeconds <= 0 {
		return nil, util.ErrInvalidWatchTime
	}

	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseOpen(user, course); err != nil {
		return nil, err
	}
	if course.ContentType == model.ContentInteractive {
		return nil, util.ErrNoVideoContent
	}

	var record *model.ProgressRecord
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.lockOrCreate(tx, user.ID, courseID)
		if txErr != nil {
			return txErr
		}

		now := time.Now()
		record.LastAccessedAt = &now
		if record.Status == model.ProgressNotStarted {
			record.Status = model.ProgressInProgress
			record.StartedAt = &now
		}

		applyVideoProgress(record, watchedSeconds, totalSeconds)

		// 无测验课程：看完视频即完成
		if record.VideoCompleted && !course.HasQuiz && record.Status != model.ProgressCompleted {
			markCompleted(record, now)
		}

		return s.ProgressRepo.Save(tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

type QuizSubmission struct {
	Answers     []int `json:"answers" binding:"required"`
	ElapsedSecs int   `json:"elapsedSeconds"`
}

// SubmitQuiz 测验提交：资格检查、判分、记录尝试、推进状态。
// 通过后 quizPassed/completed 不可逆，后续重考失败不回退。
func (s *ProgressService) SubmitQuiz(user *model.User, courseID uint, sub QuizSubmission) (*model.ProgressRecord, *model.QuizAttempt, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkCourseOpen(user, course); err != nil {
		return nil, nil, err
	}

	questions, err := s.CourseRepo.FindQuestions(courseID)
	if err != nil {
		return nil, nil, err
	}

	var record *model.ProgressRecord
	var attempt *model.QuizAttempt
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.lockOrCreate(tx, user.ID, courseID)
		if txErr != nil {
			return txErr
		}

		if err := canTakeQuiz(course, record); err != nil {
			return err
		}

		score, results, err := scoreQuiz(questions, sub.Answers)
		if err != nil {
			return err
		}

		now := time.Now()
		passed := score >= coursePassingScore(course)

		record.AttemptCount++
		record.LastAccessedAt = &now
		if record.Status == model.ProgressNotStarted {
			record.Status = model.ProgressInProgress
			record.StartedAt = &now
		}
		if score > record.BestScore {
			record.BestScore = score
		}

		if passed {
			record.QuizPassed = true
			markCompleted(record, now)
		} else if !record.QuizPassed && record.AttemptCount >= courseMaxAttempts(course) {
			// 次数用尽仍未通过
			record.Status = model.ProgressFailed
		}

		detail, _ := json.Marshal(results)
		attempt = &model.QuizAttempt{
			ProgressID:    record.ID,
			UserID:        user.ID,
			CourseID:      courseID,
			AttemptNumber: record.AttemptCount,
			Score:         score,
			Passed:        passed,
			AnswerDetail:  detail,
			ElapsedSecs:   sub.ElapsedSecs,
			SubmittedAt:   now,
		}

		if err := s.ProgressRepo.Save(tx, record); err != nil {
			return err
		}
		return s.ProgressRepo.CreateAttempt(tx, attempt)
	})
	if err != nil {
		return nil, nil, err
	}

	if attempt.Passed {
		monitoring.QuizSubmissions.WithLabelValues("true").Inc()
	} else {
		monitoring.QuizSubmissions.WithLabelValues("false").Inc()
	}
	return record, attempt, nil
}

// Restart 显式重学：视频与进度清零。已完成的培训不允许重置。
func (s *ProgressService) Restart(user *model.User, courseID uint) (*model.ProgressRecord, error) {
	course, err := s.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseOpen(user, course); err != nil {
		return nil, err
	}

	var record *model.ProgressRecord
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.ProgressRepo.FindForUpdate(tx, user.ID, courseID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return util.ErrProgressNotFound
			}
			return txErr
		}

		if record.Status == model.ProgressCompleted {
			return util.ErrAlreadyCompleted
		}

		now := time.Now()
		record.Status = model.ProgressInProgress
		record.Progress = 0
		record.VideoWatchSeconds = 0
		record.VideoCompleted = false
		record.StartedAt = &now
		record.LastAccessedAt = &now
		// 测验尝试记录与次数保留，重学不重置答题机会

		return s.ProgressRepo.Save(tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ProgressService) GetProgress(userID, courseID uint) (*model.ProgressRecord, error) {
	record, err := s.ProgressRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProgressNotFound
		}
		return nil, err
	}

	attempts, err := s.ProgressRepo.ListAttempts(record.ID)
	if err != nil {
		return nil, err
	}
	record.Attempts = attempts
	return record, nil
}

func (s *ProgressService) ListMyProgress(userID uint) ([]model.ProgressRecord, error) {
	return s.ProgressRepo.ListByUser(userID)
}

func (s *ProgressService) ListCourseProgress(courseID uint, page, limit int) ([]model.ProgressRecord, int64, error) {
	return s.ProgressRepo.ListByCourse(courseID, page, limit)
}

func (s *ProgressService) loadCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// lockOrCreate 行锁读取进度记录，不存在则创建一条 in_progress
func (s *ProgressService) lockOrCreate(tx *gorm.DB, userID, courseID uint) (*model.ProgressRecord, error) {
	record, err := s.ProgressRepo.FindForUpdate(tx, userID, courseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	record = &model.ProgressRecord{
		UserID:         userID,
		CourseID:       courseID,
		Status:         model.ProgressInProgress,
		StartedAt:      &now,
		LastAccessedAt: &now,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
