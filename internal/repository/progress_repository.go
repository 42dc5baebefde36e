package repository

import (
	"compliance_lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Create(record *model.ProgressRecord) error {
	return r.DB.Create(record).Error
}

func (r *ProgressRepository) FindByUserAndCourse(userID, courseID uint) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindForUpdate 在事务内加行锁读取进度记录。
// 测验提交和视频进度上报都是读-改-写，不加锁并发提交会丢更新。
func (r *ProgressRepository) FindForUpdate(tx *gorm.DB, userID, courseID uint) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) Save(tx *gorm.DB, record *model.ProgressRecord) error {
	return tx.Save(record).Error
}

func (r *ProgressRepository) CreateAttempt(tx *gorm.DB, attempt *model.QuizAttempt) error {
	return tx.Create(attempt).Error
}

func (r *ProgressRepository) ListAttempts(progressID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("progress_id = ?", progressID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

func (r *ProgressRepository) ListByCourse(courseID uint, page, limit int) ([]model.ProgressRecord, int64, error) {
	var records []model.ProgressRecord
	var total int64

	query := r.DB.Model(&model.ProgressRecord{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}
