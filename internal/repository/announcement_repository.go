package repository

import (
	"compliance_lms_backend/internal/model"

	"gorm.io/gorm"
)

type AnnouncementRepository struct {
	DB *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{DB: db}
}

func (r *AnnouncementRepository) Create(a *model.Announcement) error {
	return r.DB.Create(a).Error
}

func (r *AnnouncementRepository) FindByID(id uint) (*model.Announcement, error) {
	var a model.Announcement
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepository) List(page, limit int) ([]model.Announcement, int64, error) {
	var items []model.Announcement
	var total int64

	query := r.DB.Model(&model.Announcement{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("pinned DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

// ListPublished 员工可见的公告，置顶优先
func (r *AnnouncementRepository) ListPublished(limit int) ([]model.Announcement, error) {
	var items []model.Announcement
	err := r.DB.Where("published = ?", true).
		Order("pinned DESC, published_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *AnnouncementRepository) Update(a *model.Announcement) error {
	return r.DB.Save(a).Error
}

func (r *AnnouncementRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Announcement{}, id).Error
}
