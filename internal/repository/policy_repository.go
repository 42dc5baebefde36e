package repository

import (
	"compliance_lms_backend/internal/model"

	"gorm.io/gorm"
)

type PolicyRepository struct {
	DB *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{DB: db}
}

func (r *PolicyRepository) Create(policy *model.Policy) error {
	return r.DB.Create(policy).Error
}

func (r *PolicyRepository) FindByID(id string) (*model.Policy, error) {
	var policy model.Policy
	if err := r.DB.First(&policy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *PolicyRepository) List(page, limit int, status model.PolicyStatus) ([]model.Policy, int64, error) {
	var policies []model.Policy
	var total int64

	query := r.DB.Model(&model.Policy{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&policies).Error
	return policies, total, err
}

func (r *PolicyRepository) ListActive() ([]model.Policy, error) {
	var policies []model.Policy
	err := r.DB.Where("status = ?", model.PolicyActive).
		Order("effective_at DESC, created_at DESC").
		Find(&policies).Error
	return policies, err
}

func (r *PolicyRepository) Update(policy *model.Policy) error {
	return r.DB.Save(policy).Error
}

func (r *PolicyRepository) Delete(id string) error {
	return r.DB.Delete(&model.Policy{}, "id = ?", id).Error
}

func (r *PolicyRepository) CreateAcknowledgment(ack *model.PolicyAcknowledgment) error {
	return r.DB.Create(ack).Error
}

func (r *PolicyRepository) FindAcknowledgment(policyID string, userID uint) (*model.PolicyAcknowledgment, error) {
	var ack model.PolicyAcknowledgment
	err := r.DB.Where("policy_id = ? AND user_id = ?", policyID, userID).First(&ack).Error
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (r *PolicyRepository) ListAcknowledgments(policyID string, page, limit int) ([]model.PolicyAcknowledgment, int64, error) {
	var acks []model.PolicyAcknowledgment
	var total int64

	query := r.DB.Model(&model.PolicyAcknowledgment{}).Where("policy_id = ?", policyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("acked_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&acks).Error
	return acks, total, err
}

// ListAckedPolicyIDs 用户已确认过的制度ID集合
func (r *PolicyRepository) ListAckedPolicyIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.PolicyAcknowledgment{}).
		Where("user_id = ?", userID).
		Pluck("policy_id", &ids).Error
	return ids, err
}

func (r *PolicyRepository) CountAcknowledgments(policyID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PolicyAcknowledgment{}).
		Where("policy_id = ?", policyID).
		Count(&count).Error
	return count, err
}
