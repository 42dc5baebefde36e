package service

import (
	"compliance_lms_backend/internal/config"
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"compliance_lms_backend/internal/util"
	"compliance_lms_backend/pkg/logger"
	"compliance_lms_backend/pkg/monitoring"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CertificateService struct {
	CertRepo     *repository.CertificateRepository
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	UserRepo     *repository.UserRepository
	Cfg          *config.Config
}

func NewCertificateService(certRepo *repository.CertificateRepository, progressRepo *repository.ProgressRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, cfg *config.Config) *CertificateService {
	return &CertificateService{
		CertRepo:     certRepo,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		UserRepo:     userRepo,
		Cfg:          cfg,
	}
}

// Issue 签发证书。要求培训已完成；重复调用返回已有证书，不重复建档、不重做快照。
func (s *CertificateService) Issue(user *model.User, courseID uint) (*model.Certificate, error) {
	if existing, err := s.CertRepo.FindByUserAndCourse(user.ID, courseID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record, err := s.ProgressRepo.FindByUserAndCourse(user.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTrainingNotCompleted
		}
		return nil, err
	}
	if record.Status != model.ProgressCompleted {
		return nil, util.ErrTrainingNotCompleted
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	now := time.Now()
	completedAt := now
	if record.CompletedAt != nil {
		completedAt = *record.CompletedAt
	}

	cert := &model.Certificate{
		UserID:          user.ID,
		CourseID:        courseID,
		CertificateID:   util.NewCertificateID(),
		UserName:        user.Name,
		CourseTitle:     course.Title,
		Category:        course.Category,
		Score:           record.BestScore,
		PassingScore:    course.PassingScore,
		DurationMinutes: course.DurationMinutes,
		CompletedAt:     completedAt,
		IssuedAt:        now,
		IsValid:         true,
	}
	if s.Cfg != nil && s.Cfg.Certificate.ValidityMonths > 0 {
		until := now.AddDate(0, s.Cfg.Certificate.ValidityMonths, 0)
		cert.ValidUntil = &until
	}

	if err := s.CertRepo.Create(cert); err != nil {
		// 并发签发时唯一索引兜底，重查即可
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return s.CertRepo.FindByUserAndCourse(user.ID, courseID)
		}
		return nil, err
	}

	monitoring.CertificateIssued.WithLabelValues(string(cert.Category)).Inc()
	logger.Log.Info("certificate issued",
		zap.String("certificateId", cert.CertificateID),
		zap.Uint("userId", user.ID),
		zap.Uint("courseId", courseID))

	return cert, nil
}

func (s *CertificateService) ListMine(userID uint) ([]model.Certificate, error) {
	return s.CertRepo.ListByUser(userID)
}

func (s *CertificateService) Get(certificateID string) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByCertificateID(certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

// VerifyResult 对外验证接口的响应：证书编号真伪与当前有效性
type VerifyResult struct {
	CertificateID string    `json:"certificateId"`
	Valid         bool      `json:"valid"`
	UserName      string    `json:"userName,omitempty"`
	CourseTitle   string    `json:"courseTitle,omitempty"`
	IssuedAt      time.Time `json:"issuedAt,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

func (s *CertificateService) Verify(certificateID string) (*VerifyResult, error) {
	cert, err := s.Get(certificateID)
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			return &VerifyResult{CertificateID: certificateID, Valid: false, Reason: "not found"}, nil
		}
		return nil, err
	}

	result := &VerifyResult{
		CertificateID: cert.CertificateID,
		Valid:         cert.IsCurrentlyValid(time.Now()),
		UserName:      cert.UserName,
		CourseTitle:   cert.CourseTitle,
		IssuedAt:      cert.IssuedAt,
	}
	if !result.Valid {
		if !cert.IsValid {
			result.Reason = cert.InvalidReason
		} else {
			result.Reason = "expired"
		}
	}
	return result, nil
}

// RecordDownload 下载计数，不影响签发与有效性
func (s *CertificateService) RecordDownload(userID uint, certificateID string) (*model.Certificate, error) {
	cert, err := s.Get(certificateID)
	if err != nil {
		return nil, err
	}
	if cert.UserID != userID {
		return nil, util.ErrAccessDenied
	}

	now := time.Now()
	cert.DownloadCount++
	cert.LastDownloadAt = &now
	if err := s.CertRepo.Update(cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// Invalidate 吊销证书。记录原因与时间，证书仍可查询但验证不通过。
func (s *CertificateService) Invalidate(certificateID, reason string) (*model.Certificate, error) {
	cert, err := s.Get(certificateID)
	if err != nil {
		return nil, err
	}

	if cert.IsValid {
		now := time.Now()
		cert.IsValid = false
		cert.InvalidReason = reason
		cert.InvalidatedAt = &now
		if err := s.CertRepo.Update(cert); err != nil {
			return nil, err
		}
		logger.Log.Info("certificate invalidated",
			zap.String("certificateId", certificateID),
			zap.String("reason", reason))
	}
	return cert, nil
}

func (s *CertificateService) ListByCourse(courseID uint, page, limit int) ([]model.Certificate, int64, error) {
	return s.CertRepo.ListByCourse(courseID, page, limit)
}
