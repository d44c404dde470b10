package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	ModuleRepo   *repository.ModuleRepository
	Policy       *PolicyHolder
	Now          func() time.Time
}

func NewProgressService(db *gorm.DB, progressRepo *repository.ProgressRepository, moduleRepo *repository.ModuleRepository, policy *PolicyHolder) *ProgressService {
	return &ProgressService{
		DB:           db,
		ProgressRepo: progressRepo,
		ModuleRepo:   moduleRepo,
		Policy:       policy,
		Now:          time.Now,
	}
}

// GetOrInit 没有记录时返回未持久化的 not_started 值
func (s *ProgressService) GetOrInit(traineeID, moduleID uint) (*model.ModuleProgress, error) {
	p, err := s.ProgressRepo.Find(traineeID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewModuleProgress(traineeID, moduleID), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProgressService) ListByTrainee(traineeID uint) ([]model.ModuleProgress, error) {
	return s.ProgressRepo.ListByTrainee(traineeID)
}

// ModuleStates 当前学员所有已发布模块的解锁状态
func (s *ProgressService) ModuleStates(traineeID uint) ([]model.TrainingModule, []ModuleState, error) {
	modules, err := s.ModuleRepo.ListPublished()
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.ProgressRepo.ListByTrainee(traineeID)
	if err != nil {
		return nil, nil, err
	}
	return modules, DeriveModuleStates(modules, rows, s.Policy.Get()), nil
}

// RequireAccessible 模块不存在返回 NotFoundError，未解锁返回 ForbiddenError
func (s *ProgressService) RequireAccessible(traineeID, moduleID uint) (*model.TrainingModule, error) {
	modules, states, err := s.ModuleStates(traineeID)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if modules[i].ID != moduleID {
			continue
		}
		if !states[i].Unlocked {
			return nil, util.NewForbiddenError(util.ErrModuleLocked)
		}
		return &modules[i], nil
	}
	return nil, util.NewNotFoundError("module", moduleID)
}

func (s *ProgressService) MarkVideoWatched(ctx context.Context, traineeID, moduleID uint) (*model.ModuleProgress, error) {
	return s.markFlag(ctx, traineeID, moduleID, func(p *model.ModuleProgress) {
		p.VideoWatched = true
	})
}

func (s *ProgressService) MarkTranscriptViewed(ctx context.Context, traineeID, moduleID uint) (*model.ModuleProgress, error) {
	return s.markFlag(ctx, traineeID, moduleID, func(p *model.ModuleProgress) {
		p.TranscriptViewed = true
	})
}

// markFlag 标记只会从 false 变 true，not_started 变为 in_progress
func (s *ProgressService) markFlag(ctx context.Context, traineeID, moduleID uint, set func(p *model.ModuleProgress)) (*model.ModuleProgress, error) {
	if _, err := s.RequireAccessible(traineeID, moduleID); err != nil {
		return nil, err
	}

	var out *model.ModuleProgress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		p, err := repo.LockOrCreate(traineeID, moduleID)
		if err != nil {
			return err
		}
		set(p)
		p.Touch()
		if err := repo.Save(p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyAttempt 只在测评提交事务内调用
func ApplyAttempt(p *model.ModuleProgress, result *ScoreResult, at time.Time) {
	score := result.Score
	p.AssessmentAttempts++
	p.AssessmentScore = &score
	if p.HighestScore == nil || score > *p.HighestScore {
		high := score
		p.HighestScore = &high
	}

	if result.Passed && !p.AssessmentCompleted {
		p.AssessmentCompleted = true
		p.MarkCompleted(at)
		return
	}
	p.Touch()
}
