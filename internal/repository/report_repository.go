package repository

import (
	"compliance_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

// CourseStats 单门课程的完成情况统计
type CourseStats struct {
	CourseID       uint    `json:"courseId"`
	CourseTitle    string  `json:"courseTitle"`
	Enrolled       int64   `json:"enrolled"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
	AverageScore   float64 `json:"averageScore"`
}

func (r *ReportRepository) GetCourseStats(courseID uint) (*CourseStats, error) {
	var course model.Course
	if err := r.DB.First(&course, courseID).Error; err != nil {
		return nil, err
	}

	var enrolled int64
	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("course_id = ?", courseID).
		Count(&enrolled).Error; err != nil {
		return nil, err
	}

	var completed int64
	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("course_id = ? AND status = ?", courseID, model.ProgressCompleted).
		Count(&completed).Error; err != nil {
		return nil, err
	}

	var averageScore float64
	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("course_id = ? AND attempt_count > 0", courseID).
		Select("COALESCE(AVG(best_score), 0)").
		Scan(&averageScore).Error; err != nil {
		return nil, err
	}

	stats := &CourseStats{
		CourseID:     courseID,
		CourseTitle:  course.Title,
		Enrolled:     enrolled,
		Completed:    completed,
		AverageScore: averageScore,
	}
	if enrolled > 0 {
		stats.CompletionRate = float64(completed) / float64(enrolled) * 100
	}
	return stats, nil
}

// DepartmentCompliance 某部门在必修课上的合规率
type DepartmentCompliance struct {
	Department     string  `json:"department"`
	Headcount      int64   `json:"headcount"`
	Required       int64   `json:"required"`  // 部门人数 x 必修课数
	Completed      int64   `json:"completed"` // 已完成的 (人, 必修课) 对
	ComplianceRate float64 `json:"complianceRate"`
}

func (r *ReportRepository) GetDepartmentCompliance(department string) (*DepartmentCompliance, error) {
	var headcount int64
	if err := r.DB.Model(&model.User{}).
		Where("department = ? AND disabled = ?", department, false).
		Count(&headcount).Error; err != nil {
		return nil, err
	}

	var mandatoryCourses int64
	if err := r.DB.Model(&model.Course{}).
		Where("is_mandatory = ? AND status = ?", true, model.CourseActive).
		Count(&mandatoryCourses).Error; err != nil {
		return nil, err
	}

	var completed int64
	err := r.DB.Model(&model.ProgressRecord{}).
		Joins("JOIN users ON users.id = progress_records.user_id").
		Joins("JOIN courses ON courses.id = progress_records.course_id").
		Where("users.department = ? AND users.disabled = ?", department, false).
		Where("courses.is_mandatory = ? AND courses.status = ?", true, model.CourseActive).
		Where("progress_records.status = ?", model.ProgressCompleted).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	result := &DepartmentCompliance{
		Department: department,
		Headcount:  headcount,
		Required:   headcount * mandatoryCourses,
		Completed:  completed,
	}
	if result.Required > 0 {
		result.ComplianceRate = float64(completed) / float64(result.Required) * 100
	}
	return result, nil
}

func (r *ReportRepository) ListDepartments() ([]string, error) {
	var departments []string
	err := r.DB.Model(&model.User{}).
		Where("department <> ''").
		Distinct().
		Pluck("department", &departments).Error
	return departments, err
}

// OverdueEntry 必修课超期未完成的员工
type OverdueEntry struct {
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	Department  string    `json:"department"`
	CourseID    uint      `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	Deadline    time.Time `json:"deadline"`
}

func (r *ReportRepository) ListOverdue(now time.Time) ([]OverdueEntry, error) {
	var entries []OverdueEntry
	err := r.DB.Model(&model.User{}).
		Select("users.id AS user_id, users.name AS user_name, users.department, courses.id AS course_id, courses.title AS course_title, courses.deadline").
		Joins("CROSS JOIN courses").
		Joins("LEFT JOIN progress_records ON progress_records.user_id = users.id AND progress_records.course_id = courses.id").
		Where("users.disabled = ? AND users.deleted_at IS NULL", false).
		Where("courses.is_mandatory = ? AND courses.status = ? AND courses.deleted_at IS NULL", true, model.CourseActive).
		Where("courses.deadline IS NOT NULL AND courses.deadline < ?", now).
		Where("progress_records.id IS NULL OR progress_records.status <> ?", model.ProgressCompleted).
		Scan(&entries).Error
	return entries, err
}

// UserSummary 个人培训汇总
type UserSummary struct {
	UserID       uint    `json:"userId"`
	Assigned     int64   `json:"assigned"`
	InProgress   int64   `json:"inProgress"`
	Completed    int64   `json:"completed"`
	AverageScore float64 `json:"averageScore"`
	Certificates int64   `json:"certificates"`
}

func (r *ReportRepository) GetUserSummary(userID uint) (*UserSummary, error) {
	summary := &UserSummary{UserID: userID}

	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("user_id = ?", userID).
		Count(&summary.Assigned).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("user_id = ? AND status = ?", userID, model.ProgressInProgress).
		Count(&summary.InProgress).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("user_id = ? AND status = ?", userID, model.ProgressCompleted).
		Count(&summary.Completed).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&model.ProgressRecord{}).
		Where("user_id = ? AND attempt_count > 0", userID).
		Select("COALESCE(AVG(best_score), 0)").
		Scan(&summary.AverageScore).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&model.Certificate{}).
		Where("user_id = ? AND is_valid = ?", userID, true).
		Count(&summary.Certificates).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
