package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createActivePolicy(t *testing.T, db *gorm.DB, title string) *model.Policy {
	t.Helper()
	now := time.Now()
	policy := &model.Policy{
		Title:       title,
		Body:        "正文",
		Version:     "1.0",
		Category:    model.CategoryConduct,
		Status:      model.PolicyActive,
		RequiresAck: true,
		EffectiveAt: &now,
	}
	require.NoError(t, db.Create(policy).Error)
	return policy
}

func TestAcknowledgePolicy(t *testing.T) {
	db := newTestDB(t)
	svc := NewPolicyService(repository.NewPolicyRepository(db))
	user := createUser(t, db, "han", model.Employee, "工程部")
	policy := createActivePolicy(t, db, "员工行为准则")

	ack, err := svc.Acknowledge(user.ID, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.Version, ack.Version)
	assert.False(t, ack.AckedAt.IsZero())

	// 重复确认报冲突
	_, err = svc.Acknowledge(user.ID, policy.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyAcknowledged)

	// 未生效的制度不可确认
	draft := &model.Policy{Title: "草稿制度", Status: model.PolicyDraft, Version: "1.0"}
	require.NoError(t, db.Create(draft).Error)
	_, err = svc.Acknowledge(user.ID, draft.ID)
	assert.ErrorIs(t, err, util.ErrPolicyNotOpen)
}

func TestListForEmployee(t *testing.T) {
	db := newTestDB(t)
	svc := NewPolicyService(repository.NewPolicyRepository(db))
	user := createUser(t, db, "shen", model.Employee, "工程部")

	acked := createActivePolicy(t, db, "已确认制度")
	createActivePolicy(t, db, "未确认制度")
	// 草稿制度不出现在员工列表
	require.NoError(t, db.Create(&model.Policy{Title: "草稿", Status: model.PolicyDraft, Version: "1.0"}).Error)

	_, err := svc.Acknowledge(user.ID, acked.ID)
	require.NoError(t, err)

	list, err := svc.ListForEmployee(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byTitle := map[string]bool{}
	for _, p := range list {
		byTitle[p.Title] = p.Acknowledged
	}
	assert.True(t, byTitle["已确认制度"])
	assert.False(t, byTitle["未确认制度"])
}

func TestGetAckReport(t *testing.T) {
	db := newTestDB(t)
	svc := NewPolicyService(repository.NewPolicyRepository(db))
	policy := createActivePolicy(t, db, "信息安全制度")

	u1 := createUser(t, db, "usera", model.Employee, "工程部")
	createUser(t, db, "userb", model.Employee, "销售部")

	_, err := svc.Acknowledge(u1.ID, policy.ID)
	require.NoError(t, err)

	report, err := svc.GetAckReport(policy.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.AckCount)
	assert.EqualValues(t, 2, report.Total)
	assert.InDelta(t, 50.0, report.Percentage, 0.01)
	require.Len(t, report.Latest, 1)
}
