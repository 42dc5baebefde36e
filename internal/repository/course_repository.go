package repository

import (
	"compliance_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("course_questions.`order` ASC, course_questions.id ASC")
	}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(page, limit int, status model.CourseStatus, category model.CourseCategory) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

// ListActive 全部上线课程，受众过滤在 service 层做
func (r *CourseRepository) ListActive() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ?", model.CourseActive).
		Order("is_mandatory DESC, deadline ASC, id DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.CourseQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

// ReplaceQuestions 全量替换课程题目（编辑测验时使用）
func (r *CourseRepository) ReplaceQuestions(courseID uint, questions []model.CourseQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&model.CourseQuestion{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].CourseID = courseID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CourseRepository) FindQuestions(courseID uint) ([]model.CourseQuestion, error) {
	var questions []model.CourseQuestion
	err := r.DB.Where("course_id = ?", courseID).
		Order("`order` ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// ListDueForPublish 到达定时上线时间但仍是草稿的课程
func (r *CourseRepository) ListDueForPublish(now time.Time) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ? AND publish_at IS NOT NULL AND publish_at <= ?", model.CourseDraft, now).
		Find(&courses).Error
	return courses, err
}
