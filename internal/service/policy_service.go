package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type PolicyService struct {
	PolicyRepo *repository.PolicyRepository
}

func NewPolicyService(policyRepo *repository.PolicyRepository) *PolicyService {
	return &PolicyService{PolicyRepo: policyRepo}
}

type PolicyReq struct {
	Title       *string    `json:"title"`
	Body        *string    `json:"body"`
	Version     *string    `json:"version"`
	Category    *string    `json:"category"`
	Status      *string    `json:"status"`
	RequiresAck *bool      `json:"requiresAck"`
	EffectiveAt *time.Time `json:"effectiveAt"`
}

func (s *PolicyService) CreatePolicy(creatorID uint, req PolicyReq) (*model.Policy, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	policy := &model.Policy{
		Title:       *req.Title,
		Version:     "1.0",
		Category:    model.CategoryOther,
		Status:      model.PolicyDraft,
		RequiresAck: true,
		CreatedBy:   creatorID,
	}
	applyPolicyReq(policy, req)

	if err := s.PolicyRepo.Create(policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *PolicyService) UpdatePolicy(policyID string, req PolicyReq) (*model.Policy, error) {
	policy, err := s.findPolicy(policyID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errors.New("title is required")
		}
		policy.Title = *req.Title
	}
	applyPolicyReq(policy, req)

	if err := s.PolicyRepo.Update(policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func applyPolicyReq(policy *model.Policy, req PolicyReq) {
	if req.Body != nil {
		policy.Body = *req.Body
	}
	if req.Version != nil {
		policy.Version = *req.Version
	}
	if req.Category != nil {
		policy.Category = model.CourseCategory(*req.Category)
	}
	if req.Status != nil {
		policy.Status = model.PolicyStatus(*req.Status)
	}
	if req.RequiresAck != nil {
		policy.RequiresAck = *req.RequiresAck
	}
	if req.EffectiveAt != nil {
		policy.EffectiveAt = req.EffectiveAt
	}
}

func (s *PolicyService) DeletePolicy(policyID string) error {
	if _, err := s.findPolicy(policyID); err != nil {
		return err
	}
	return s.PolicyRepo.Delete(policyID)
}

func (s *PolicyService) GetPolicy(policyID string) (*model.Policy, error) {
	return s.findPolicy(policyID)
}

func (s *PolicyService) ListPolicies(page, limit int, status model.PolicyStatus) ([]model.Policy, int64, error) {
	return s.PolicyRepo.List(page, limit, status)
}

// Acknowledge 员工确认制度。每人每制度只能确认一次，重复确认报冲突。
func (s *PolicyService) Acknowledge(userID uint, policyID string) (*model.PolicyAcknowledgment, error) {
	policy, err := s.findPolicy(policyID)
	if err != nil {
		return nil, err
	}
	if policy.Status != model.PolicyActive {
		return nil, util.ErrPolicyNotOpen
	}

	if _, err := s.PolicyRepo.FindAcknowledgment(policyID, userID); err == nil {
		return nil, util.ErrAlreadyAcknowledged
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ack := &model.PolicyAcknowledgment{
		PolicyID: policyID,
		UserID:   userID,
		AckedAt:  time.Now(),
		Version:  policy.Version,
	}
	if err := s.PolicyRepo.CreateAcknowledgment(ack); err != nil {
		// 并发确认时唯一索引兜底
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return nil, util.ErrAlreadyAcknowledged
		}
		return nil, err
	}
	return ack, nil
}

// PolicyWithAckStatus 员工视角的制度列表项
type PolicyWithAckStatus struct {
	model.Policy
	Acknowledged bool `json:"acknowledged"`
}

func (s *PolicyService) ListForEmployee(userID uint) ([]PolicyWithAckStatus, error) {
	policies, err := s.PolicyRepo.ListActive()
	if err != nil {
		return nil, err
	}

	ackedIDs, err := s.PolicyRepo.ListAckedPolicyIDs(userID)
	if err != nil {
		return nil, err
	}
	ackedSet := make(map[string]bool, len(ackedIDs))
	for _, id := range ackedIDs {
		ackedSet[id] = true
	}

	result := make([]PolicyWithAckStatus, len(policies))
	for i, p := range policies {
		result[i] = PolicyWithAckStatus{Policy: p, Acknowledged: ackedSet[p.ID]}
	}
	return result, nil
}

// AckReport 某制度的确认进度
type AckReport struct {
	PolicyID    string                       `json:"policyId"`
	Title       string                       `json:"title"`
	AckCount    int64                        `json:"ackCount"`
	Total       int64                        `json:"total"`
	Percentage  float64                      `json:"percentage"`
	Latest      []model.PolicyAcknowledgment `json:"latest"`
}

func (s *PolicyService) GetAckReport(policyID string, totalEmployees int64) (*AckReport, error) {
	policy, err := s.findPolicy(policyID)
	if err != nil {
		return nil, err
	}

	count, err := s.PolicyRepo.CountAcknowledgments(policyID)
	if err != nil {
		return nil, err
	}

	latest, _, err := s.PolicyRepo.ListAcknowledgments(policyID, 1, 20)
	if err != nil {
		return nil, err
	}

	report := &AckReport{
		PolicyID: policyID,
		Title:    policy.Title,
		AckCount: count,
		Total:    totalEmployees,
		Latest:   latest,
	}
	if totalEmployees > 0 {
		report.Percentage = float64(count) / float64(totalEmployees) * 100
	}
	return report, nil
}

func (s *PolicyService) findPolicy(policyID string) (*model.Policy, error) {
	policy, err := s.PolicyRepo.FindByID(policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPolicyNotFound
		}
		return nil, err
	}
	return policy, nil
}
