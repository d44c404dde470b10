package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/database"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaxClassMinutes 单次直播课最长时长
const MaxClassMinutes = 24 * 60

type ScheduleClassRequest struct {
	ModuleID        *uint     `json:"moduleId"`
	Title           string    `json:"title" validate:"required,notblank,max=255"`
	HostName        string    `json:"hostName" validate:"max=100"`
	StartsAt        time.Time `json:"startsAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0,lte=1440"`
	MeetingURL      string    `json:"meetingUrl" validate:"omitempty,url"`
	Capacity        int       `json:"capacity" validate:"gte=0"`
}

type LiveClassView struct {
	model.LiveClass
	EndsAt          time.Time `json:"endsAt"`
	RegisteredCount int64     `json:"registeredCount"`
	Registered      bool      `json:"registered"`
}

type LiveClassService struct {
	DB         *gorm.DB
	Repo       *repository.LiveClassRepository
	ModuleRepo *repository.ModuleRepository
	Now        func() time.Time
}

func NewLiveClassService(db *gorm.DB, repo *repository.LiveClassRepository, moduleRepo *repository.ModuleRepository) *LiveClassService {
	return &LiveClassService{
		DB:         db,
		Repo:       repo,
		ModuleRepo: moduleRepo,
		Now:        time.Now,
	}
}

func (s *LiveClassService) Schedule(req ScheduleClassRequest) (*model.LiveClass, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if !req.StartsAt.After(s.Now()) {
		return nil, util.NewValidationError("invalid request",
			util.FieldError{Field: "startsAt", Error: "startsAt must be in the future"})
	}
	if req.ModuleID != nil {
		if _, err := s.ModuleRepo.FindByID(*req.ModuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.NewNotFoundError("module", *req.ModuleID)
			}
			return nil, err
		}
	}

	class := &model.LiveClass{
		ModuleID:        req.ModuleID,
		Title:           strings.TrimSpace(req.Title),
		HostName:        req.HostName,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		MeetingURL:      req.MeetingURL,
		Capacity:        req.Capacity,
	}
	if err := s.Repo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

// ListUpcoming 未结束的课程，带报名人数和当前学员是否已报名
func (s *LiveClassService) ListUpcoming(traineeID uint) ([]LiveClassView, error) {
	now := s.Now()
	candidates, err := s.Repo.ListStartingAfter(now.Add(-MaxClassMinutes * time.Minute))
	if err != nil {
		return nil, err
	}

	var classes []model.LiveClass
	ids := make([]uint, 0, len(candidates))
	for _, c := range candidates {
		if c.EndsAt().After(now) {
			classes = append(classes, c)
			ids = append(ids, c.ID)
		}
	}

	counts, err := s.Repo.CountRegistrations(ids)
	if err != nil {
		return nil, err
	}
	mine, err := s.Repo.RegisteredClassIDs(traineeID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]LiveClassView, 0, len(classes))
	for _, c := range classes {
		out = append(out, LiveClassView{
			LiveClass:       c,
			EndsAt:          c.EndsAt(),
			RegisteredCount: counts[c.ID],
			Registered:      mine[c.ID],
		})
	}
	return out, nil
}

// Register 锁住课程行后检查容量
func (s *LiveClassService) Register(ctx context.Context, traineeID, classID uint) (*model.LiveClassRegistration, error) {
	var reg *model.LiveClassRegistration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		class, err := repo.LockByID(classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.NewNotFoundError("live class", classID)
			}
			return err
		}
		if !class.EndsAt().After(s.Now()) {
			return util.NewValidationError("live class has ended")
		}

		if class.Capacity > 0 {
			count, err := repo.CountForClass(classID)
			if err != nil {
				return err
			}
			if count >= int64(class.Capacity) {
				return util.NewConflictError("live class is full", false)
			}
		}

		reg = &model.LiveClassRegistration{ClassID: classID, TraineeID: traineeID}
		if err := repo.CreateRegistration(reg); err != nil {
			if database.IsDuplicateKey(err) {
				return util.NewConflictError("already registered", false)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *LiveClassService) Unregister(traineeID, classID uint) error {
	removed, err := s.Repo.DeleteRegistration(classID, traineeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return util.NewNotFoundError("registration", classID)
	}
	return nil
}
