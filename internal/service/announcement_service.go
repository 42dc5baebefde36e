package service

import (
	"compliance_lms_backend/internal/model"
	"compliance_lms_backend/internal/repository"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AnnouncementService struct {
	Repo *repository.AnnouncementRepository
}

func NewAnnouncementService(repo *repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{Repo: repo}
}

type AnnouncementReq struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Pinned    *bool   `json:"pinned"`
	Published *bool   `json:"published"`
}

func (s *AnnouncementService) Create(creatorID uint, req AnnouncementReq) (*model.Announcement, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	a := &model.Announcement{
		Title:     *req.Title,
		CreatedBy: creatorID,
	}
	s.apply(a, req)

	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) Update(id uint, req AnnouncementReq) (*model.Announcement, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errors.New("title is required")
		}
		a.Title = *req.Title
	}
	s.apply(a, req)

	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) apply(a *model.Announcement, req AnnouncementReq) {
	if req.Body != nil {
		a.Body = *req.Body
	}
	if req.Pinned != nil {
		a.Pinned = *req.Pinned
	}
	if req.Published != nil {
		wasPublished := a.Published
		a.Published = *req.Published
		if a.Published && !wasPublished {
			now := time.Now()
			a.PublishedAt = &now
		}
	}
}

func (s *AnnouncementService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

func (s *AnnouncementService) List(page, limit int) ([]model.Announcement, int64, error) {
	return s.Repo.List(page, limit)
}

func (s *AnnouncementService) ListPublished(limit int) ([]model.Announcement, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Repo.ListPublished(limit)
}
