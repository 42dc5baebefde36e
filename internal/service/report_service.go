package service

import (
	"compliance_lms_backend/internal/repository"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const overviewCacheKey = "reports:overview"

type ReportService struct {
	ReportRepo *repository.ReportRepository
	CourseRepo *repository.CourseRepository
	UserRepo   *repository.UserRepository
	Redis      *redis.Client
}

func NewReportService(reportRepo *repository.ReportRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, rdb *redis.Client) *ReportService {
	return &ReportService{
		ReportRepo: reportRepo,
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		Redis:      rdb,
	}
}

// Overview 全局合规大盘
type Overview struct {
	Courses      []repository.CourseStats          `json:"courses"`
	Departments  []repository.DepartmentCompliance `json:"departments"`
	OverdueCount int                               `json:"overdueCount"`
	GeneratedAt  time.Time                         `json:"generatedAt"`
}

// GetOverview 汇总所有上线课程与部门的合规数据，计算量大，整体走 Redis 缓存
func (s *ReportService) GetOverview() (*Overview, error) {
	ctx := context.Background()

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, overviewCacheKey).Result(); err == nil {
			var cached Overview
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	overview, err := s.buildOverview()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			s.Redis.Set(ctx, overviewCacheKey, data, 10*time.Minute)
		}
	}
	return overview, nil
}

func (s *ReportService) buildOverview() (*Overview, error) {
	courses, err := s.CourseRepo.ListActive()
	if err != nil {
		return nil, err
	}

	courseStats := make([]repository.CourseStats, 0, len(courses))
	for i := range courses {
		stats, err := s.ReportRepo.GetCourseStats(courses[i].ID)
		if err != nil {
			return nil, err
		}
		courseStats = append(courseStats, *stats)
	}

	departments, err := s.ReportRepo.ListDepartments()
	if err != nil {
		return nil, err
	}
	deptStats := make([]repository.DepartmentCompliance, 0, len(departments))
	for _, dept := range departments {
		stats, err := s.ReportRepo.GetDepartmentCompliance(dept)
		if err != nil {
			return nil, err
		}
		deptStats = append(deptStats, *stats)
	}

	overdue, err := s.ReportRepo.ListOverdue(time.Now())
	if err != nil {
		return nil, err
	}

	return &Overview{
		Courses:      courseStats,
		Departments:  deptStats,
		OverdueCount: len(overdue),
		GeneratedAt:  time.Now(),
	}, nil
}

func (s *ReportService) GetCourseStats(courseID uint) (*repository.CourseStats, error) {
	return s.ReportRepo.GetCourseStats(courseID)
}

func (s *ReportService) GetDepartmentCompliance(department string) (*repository.DepartmentCompliance, error) {
	return s.ReportRepo.GetDepartmentCompliance(department)
}

func (s *ReportService) ListOverdue() ([]repository.OverdueEntry, error) {
	return s.ReportRepo.ListOverdue(time.Now())
}

func (s *ReportService) GetUserSummary(userID uint) (*repository.UserSummary, error) {
	return s.ReportRepo.GetUserSummary(userID)
}

// CountActiveEmployees 用于制度确认率的分母
func (s *ReportService) CountActiveEmployees() (int64, error) {
	return s.UserRepo.CountActive()
}
