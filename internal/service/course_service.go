package service

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"compliance_lms_backend/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const activeCourseCacheKey = "courses:active"

type CourseService struct {
	CourseRepo *repository.CourseRepository
	UserRepo   *repository.UserRepository
	Storage    *StorageService
	Redis      *redis.Client
	Cfg        *config.Config
}

func NewCourseService(courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, storage *StorageService, rdb *redis.Client, cfg *config.Config) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		Storage:    storage,
		Redis:      rdb,
		Cfg:        cfg,
	}
}

type CourseQuestionReq struct {
	Content      string   `json:"content" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correctIndex"`
	Order        int      `json:"order"`
}

type CourseReq struct {
	Title           *string              `json:"title"`
	Description     *string              `json:"description"`
	Category        *string              `json:"category"`
	DurationMinutes *int                 `json:"durationMinutes"`
	ContentType     *string              `json:"contentType"`
	Status          *string              `json:"status"`
	IsMandatory     *bool                `json:"isMandatory"`
	Deadline        *time.Time           `json:"deadline"`
	PublishAt       *time.Time           `json:"publishAt"`
	VideoURL        *string              `json:"videoUrl"`
	YouTubeID       *string              `json:"youtubeId"`
	PassingScore    *int                 `json:"passingScore"`
	MaxAttempts     *int                 `json:"maxAttempts"`
	AllowRetakes    *bool                `json:"allowRetakes"`
	RequireVideo    *bool                `json:"requireVideo"`
	AudienceType    *string              `json:"audienceType"`
	Departments     *[]string            `json:"departments"`
	Roles           *[]string            `json:"roles"`
	Questions       *[]CourseQuestionReq `json:"questions"`
}

// validateQuiz 测验结构校验：题目必须有选项，正确项下标必须落在选项内
func validateQuiz(questions []CourseQuestionReq, passingScore int) error {
	if passingScore < 0 || passingScore > 100 {
		return fmt.Errorf("%w: passing score must be within [0,100]", util.ErrValidation)
	}
	for i, q := range questions {
		if q.Content == "" {
			return fmt.Errorf("%w: question %d: content is required", util.ErrValidation, i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d: at least 2 options required", util.ErrValidation, i+1)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d: correct index out of range", util.ErrValidation, i+1)
		}
	}
	return nil
}

func (s *CourseService) CreateCourse(creatorID uint, req CourseReq) (*model.Course, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if req.DurationMinutes == nil || *req.DurationMinutes < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", util.ErrValidation)
	}
	if req.ContentType == nil {
		return nil, fmt.Errorf("%w: content type is required", util.ErrValidation)
	}

	contentType := model.ContentType(*req.ContentType)
	switch contentType {
	case model.ContentVideo, model.ContentYouTube, model.ContentInteractive:
	default:
		return nil, fmt.Errorf("%w: invalid content type", util.ErrValidation)
	}

	course := &model.Course{
		Title:           *req.Title,
		DurationMinutes: *req.DurationMinutes,
		ContentType:     contentType,
		Status:          model.CourseDraft,
		Category:        model.CategoryOther,
		PassingScore:    model.DefaultPassingScore,
		MaxAttempts:     model.DefaultMaxAttempts,
		RequireVideo:    true,
		AudienceType:    model.AudienceAll,
		CreatedBy:       creatorID,
	}

	if err := s.applyCourseReq(course, req); err != nil {
		return nil, err
	}

	if req.Questions != nil && len(*req.Questions) > 0 {
		if err := validateQuiz(*req.Questions, course.PassingScore); err != nil {
			return nil, err
		}
		course.HasQuiz = true
		course.Questions = buildQuestions(0, *req.Questions)
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	s.invalidateCache()
	return course, nil
}

func (s *CourseService) UpdateCourse(courseID uint, req CourseReq) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title is required", util.ErrValidation)
		}
		course.Title = *req.Title
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 1 {
			return nil, fmt.Errorf("%w: duration must be at least 1 minute", util.ErrValidation)
		}
		course.DurationMinutes = *req.DurationMinutes
	}

	if err := s.applyCourseReq(course, req); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if len(*req.Questions) > 0 {
			if err := validateQuiz(*req.Questions, course.PassingScore); err != nil {
				return nil, err
			}
			course.HasQuiz = true
			if err := s.CourseRepo.ReplaceQuestions(courseID, buildQuestions(courseID, *req.Questions)); err != nil {
				return nil, err
			}
		} else {
			course.HasQuiz = false
			if err := s.CourseRepo.ReplaceQuestions(courseID, nil); err != nil {
				return nil, err
			}
		}
		course.Questions = nil
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}

	s.invalidateCache()
	return s.CourseRepo.FindByID(courseID)
}

// applyCourseReq 套用可选字段，Create/Update 共用
func (s *CourseService) applyCourseReq(course *model.Course, req CourseReq) error {
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = model.CourseCategory(*req.Category)
	}
	if req.Status != nil {
		status := model.CourseStatus(*req.Status)
		switch status {
		case model.CourseDraft, model.CourseActive, model.CourseInactive, model.CourseArchived:
			course.Status = status
		default:
			return fmt.Errorf("%w: invalid course status", util.ErrValidation)
		}
	}
	if req.IsMandatory != nil {
		course.IsMandatory = *req.IsMandatory
	}
	if req.Deadline != nil {
		course.Deadline = req.Deadline
	}
	if req.PublishAt != nil {
		course.PublishAt = req.PublishAt
	}
	if req.VideoURL != nil {
		course.VideoURL = *req.VideoURL
	}
	if req.YouTubeID != nil {
		course.YouTubeID = *req.YouTubeID
	}
	if req.PassingScore != nil {
		if *req.PassingScore < 0 || *req.PassingScore > 100 {
			return fmt.Errorf("%w: passing score must be within [0,100]", util.ErrValidation)
		}
		course.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		if *req.MaxAttempts < 1 {
			return fmt.Errorf("%w: max attempts must be at least 1", util.ErrValidation)
		}
		course.MaxAttempts = *req.MaxAttempts
	}
	if req.AllowRetakes != nil {
		course.AllowRetakes = *req.AllowRetakes
	}
	if req.RequireVideo != nil {
		course.RequireVideo = *req.RequireVideo
	}
	if req.AudienceType != nil {
		at := model.AudienceType(*req.AudienceType)
		switch at {
		case model.AudienceAll, model.AudienceDepartment, model.AudienceRole:
			course.AudienceType = at
		default:
			return fmt.Errorf("%w: invalid audience type", util.ErrValidation)
		}
	}
	if req.Departments != nil {
		course.Departments = datatypes.JSONSlice[string](*req.Departments)
	}
	if req.Roles != nil {
		course.Roles = datatypes.JSONSlice[string](*req.Roles)
	}

	// 内容载荷一致性：video 必须有 VideoURL，youtube 必须有 YouTubeID
	switch course.ContentType {
	case model.ContentYouTube:
		if req.YouTubeID != nil && course.YouTubeID == "" {
			return fmt.Errorf("%w: youtube id is required for youtube course", util.ErrValidation)
		}
	case model.ContentInteractive:
		course.VideoURL = ""
		course.YouTubeID = ""
	}
	return nil
}

func buildQuestions(courseID uint, reqs []CourseQuestionReq) []model.CourseQuestion {
	questions := make([]model.CourseQuestion, 0, len(reqs))
	for i, q := range reqs {
		order := q.Order
		if order == 0 {
			order = i + 1
		}
		questions = append(questions, model.CourseQuestion{
			CourseID:     courseID,
			Content:      q.Content,
			Options:      datatypes.JSONSlice[string](q.Options),
			CorrectIndex: q.CorrectIndex,
			Order:        order,
		})
	}
	return questions
}

func (s *CourseService) GetCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) ListCourses(page, limit int, status model.CourseStatus, category model.CourseCategory) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, status, category)
}

func (s *CourseService) DeleteCourse(courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	if err := s.CourseRepo.Delete(courseID); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// ListAccessibleCourses 员工视角的课程目录：上线课程经受众过滤。
// 合规专员/管理员不过滤。上线课程列表整体走 Redis 缓存。
func (s *CourseService) ListAccessibleCourses(user *model.User) ([]model.Course, error) {
	courses, err := s.loadActiveCourses()
	if err != nil {
		return nil, err
	}

	if user.Role.IsComplianceStaff() {
		return courses, nil
	}

	accessible := make([]model.Course, 0, len(courses))
	for i := range courses {
		if CanAccessCourse(user, &courses[i]) {
			accessible = append(accessible, courses[i])
		}
	}
	return accessible, nil
}

func (s *CourseService) loadActiveCourses() ([]model.Course, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, activeCourseCacheKey).Result(); err == nil {
			var cached []model.Course
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	courses, err := s.CourseRepo.ListActive()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(courses); err == nil {
			s.Redis.Set(ctx, activeCourseCacheKey, data, 5*time.Minute)
		}
	}
	return courses, nil
}

func (s *CourseService) invalidateCache() {
	if s.Redis != nil {
		s.Redis.Del(context.Background(), activeCourseCacheKey)
	}
}

// AttachVideo 课程视频上传后回填内容载荷，并用 ffmpeg 校准视频时长
func (s *CourseService) AttachVideo(courseID uint, localPath, url string) (*model.Course, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	if course.ContentType != model.ContentVideo {
		return nil, util.ErrNotVideoCourse
	}

	course.VideoURL = url
	if info, err := util.GetVideoInfo(localPath); err == nil {
		course.VideoSeconds = int(info.Duration)
	} else {
		logger.Log.Warn("video probe failed, keeping declared duration", zap.Error(err))
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return course, nil
}

// ProcessScheduledPublishes 定时上线：到点的草稿课程切为 active
func (s *CourseService) ProcessScheduledPublishes() error {
	due, err := s.CourseRepo.ListDueForPublish(time.Now())
	if err != nil {
		return err
	}
	for i := range due {
		due[i].Status = model.CourseActive
		if err := s.CourseRepo.Update(&due[i]); err != nil {
			return err
		}
		logger.Log.Info("course published on schedule",
			zap.Uint("courseId", due[i].ID),
			zap.String("title", due[i].Title))
	}
	if len(due) > 0 {
		s.invalidateCache()
	}
	return nil
}
