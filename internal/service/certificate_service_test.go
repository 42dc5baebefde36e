package service

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCertificateService(db *gorm.DB, cfg *config.Config) *CertificateService {
	return NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewProgressRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		cfg,
	)
}

func completeTraining(t *testing.T, db *gorm.DB, user *model.User, course *model.Course) {
	t.Helper()
	svc := newProgressService(db)
	_, err := svc.UpdateVideoProgress(user, course.ID, course.VideoSeconds, course.VideoSeconds)
	require.NoError(t, err)
	if course.HasQuiz {
		_, _, err = svc.SubmitQuiz(user, course.ID, QuizSubmission{Answers: []int{0, 1, 0, 1}})
		require.NoError(t, err)
	}
}

func TestIssueCertificate(t *testing.T) {
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.Certificate.ValidityMonths = 12
	svc := newCertificateService(db, cfg)

	user := createUser(t, db, "zhou", model.Employee, "工程部")
	course := createVideoCourse(t, db, "数据隐私培训", true)
	completeTraining(t, db, user, course)

	cert, err := svc.Issue(user, course.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cert.CertificateID, "CERT-"))
	assert.Equal(t, user.Name, cert.UserName)
	assert.Equal(t, course.Title, cert.CourseTitle)
	assert.Equal(t, 100, cert.Score)
	assert.True(t, cert.IsValid)
	require.NotNil(t, cert.ValidUntil)

	// 幂等：重复签发返回同一张证书
	again, err := svc.Issue(user, course.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.CertificateID, again.CertificateID)

	var count int64
	db.Model(&model.Certificate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIssueRequiresCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newCertificateService(db, &config.Config{})
	user := createUser(t, db, "wu", model.Employee, "工程部")
	course := createVideoCourse(t, db, "半途而废", false)

	// 没有学习记录
	_, err := svc.Issue(user, course.ID)
	assert.ErrorIs(t, err, util.ErrTrainingNotCompleted)

	// 有记录但未完成
	progressSvc := newProgressService(db)
	_, err = progressSvc.UpdateVideoProgress(user, course.ID, 60, 600)
	require.NoError(t, err)
	_, err = svc.Issue(user, course.ID)
	assert.ErrorIs(t, err, util.ErrTrainingNotCompleted)
}

func TestCertificateSnapshotSurvivesCourseChange(t *testing.T) {
	db := newTestDB(t)
	svc := newCertificateService(db, &config.Config{})
	user := createUser(t, db, "zheng", model.Employee, "工程部")
	course := createVideoCourse(t, db, "原始标题", false)
	completeTraining(t, db, user, course)

	cert, err := svc.Issue(user, course.ID)
	require.NoError(t, err)

	// 课程改名后证书快照不变
	require.NoError(t, db.Model(course).Update("title", "新标题").Error)
	got, err := svc.Get(cert.CertificateID)
	require.NoError(t, err)
	assert.Equal(t, "原始标题", got.CourseTitle)
}

func TestVerifyAndInvalidate(t *testing.T) {
	db := newTestDB(t)
	svc := newCertificateService(db, &config.Config{})
	user := createUser(t, db, "feng", model.Employee, "工程部")
	course := createVideoCourse(t, db, "合规必修", false)
	completeTraining(t, db, user, course)

	cert, err := svc.Issue(user, course.ID)
	require.NoError(t, err)

	result, err := svc.Verify(cert.CertificateID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, user.Name, result.UserName)

	// 吊销后验证不通过但仍可查询
	_, err = svc.Invalidate(cert.CertificateID, "违规操作")
	require.NoError(t, err)

	result, err = svc.Verify(cert.CertificateID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "违规操作", result.Reason)

	got, err := svc.Get(cert.CertificateID)
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	require.NotNil(t, got.InvalidatedAt)

	// 不存在的证书编号
	result, err = svc.Verify("CERT-NOPE")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "not found", result.Reason)
}

func TestCertificateExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	cert := &model.Certificate{IsValid: true, ValidUntil: &future}
	assert.True(t, cert.IsCurrentlyValid(time.Now()))

	cert.ValidUntil = &past
	assert.False(t, cert.IsCurrentlyValid(time.Now()))

	// 无有效期即永久有效
	cert.ValidUntil = nil
	assert.True(t, cert.IsCurrentlyValid(time.Now()))
}

func TestRecordDownload(t *testing.T) {
	db := newTestDB(t)
	svc := newCertificateService(db, &config.Config{})
	user := createUser(t, db, "chen", model.Employee, "工程部")
	other := createUser(t, db, "yang", model.Employee, "工程部")
	course := createVideoCourse(t, db, "下载计数", false)
	completeTraining(t, db, user, course)

	cert, err := svc.Issue(user, course.ID)
	require.NoError(t, err)

	got, err := svc.RecordDownload(user.ID, cert.CertificateID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DownloadCount)
	require.NotNil(t, got.LastDownloadAt)

	// 只能下载自己的证书
	_, err = svc.RecordDownload(other.ID, cert.CertificateID)
	assert.ErrorIs(t, err, util.ErrAccessDenied)
}
