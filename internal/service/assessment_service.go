package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"
	"care_training_backend/pkg/monitoring"
	"care_training_backend/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmitAssessmentRequest struct {
	ModuleID      uint                    `json:"moduleId"`
	AttemptNumber int                     `json:"attemptNumber" validate:"gte=0"`
	Responses     []model.AttemptResponse `json:"responses" validate:"required,min=1,dive"`
}

type SubmitAssessmentResult struct {
	AttemptNumber int `json:"attemptNumber"`
	ScoreResult
	Progress *model.ModuleProgress `json:"progress"`
}

// PublicQuestion 学员看到的题目，不含答案
type PublicQuestion struct {
	ID       uint               `json:"id"`
	Text     string             `json:"text"`
	Type     model.QuestionType `json:"type"`
	Points   int                `json:"points"`
	Position int                `json:"position"`
	Options  []PublicOption     `json:"options,omitempty"`
}

type PublicOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type AssessmentService struct {
	DB                *gorm.DB
	Progress          *ProgressService
	QuestionRepo      *repository.QuestionRepository
	ProgressRepo      *repository.ProgressRepository
	AttemptRepo       *repository.AttemptRepository
	ShortAnswerPolicy ShortAnswerPolicy
	MaxRetries        uint
	Now               func() time.Time
}

func NewAssessmentService(
	db *gorm.DB,
	progress *ProgressService,
	questionRepo *repository.QuestionRepository,
	progressRepo *repository.ProgressRepository,
	attemptRepo *repository.AttemptRepository,
	policy ShortAnswerPolicy,
	maxRetries uint,
) *AssessmentService {
	if maxRetries == 0 {
		maxRetries = 1
	}
	return &AssessmentService{
		DB:                db,
		Progress:          progress,
		QuestionRepo:      questionRepo,
		ProgressRepo:      progressRepo,
		AttemptRepo:       attemptRepo,
		ShortAnswerPolicy: policy,
		MaxRetries:        maxRetries,
		Now:               time.Now,
	}
}

// Questions 返回去掉正确答案和参考答案的题目
func (s *AssessmentService) Questions(traineeID, moduleID uint) ([]PublicQuestion, error) {
	if _, err := s.Progress.RequireAccessible(traineeID, moduleID); err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListByModule(moduleID)
	if err != nil {
		return nil, err
	}

	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		pq := PublicQuestion{ID: q.ID, Text: q.Text, Type: q.Type, Points: q.Points, Position: q.Position}
		for _, o := range q.Options {
			pq.Options = append(pq.Options, PublicOption{Letter: o.Letter, Text: o.Text})
		}
		out = append(out, pq)
	}
	return out, nil
}

// Submit 每次调用都会产生一条新的编号记录
func (s *AssessmentService) Submit(ctx context.Context, traineeID uint, req SubmitAssessmentRequest) (*SubmitAssessmentResult, error) {
	ctx, span := tracing.StartSpan(ctx, "assessment.submit",
		attribute.Int64("trainee.id", int64(traineeID)),
		attribute.Int64("module.id", int64(req.ModuleID)),
	)
	defer span.End()

	out, err := s.submit(ctx, traineeID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("attempt.number", out.AttemptNumber),
		attribute.Bool("attempt.passed", out.Passed),
	)
	monitoring.ObserveSubmission(out.Passed)
	logger.Log.Info("Assessment submitted",
		zap.Uint("trainee_id", traineeID),
		zap.Uint("module_id", req.ModuleID),
		zap.Int("attempt", out.AttemptNumber),
		zap.Int("score", out.Score),
		zap.Int("total", out.TotalPoints),
		zap.Bool("passed", out.Passed),
	)
	return out, nil
}

func (s *AssessmentService) submit(ctx context.Context, traineeID uint, req SubmitAssessmentRequest) (*SubmitAssessmentResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.Progress.RequireAccessible(traineeID, req.ModuleID); err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByModule(req.ModuleID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.NewValidationError("module has no assessment questions")
	}

	result, err := Score(questions, req.Responses, s.ShortAnswerPolicy)
	if err != nil {
		return nil, err
	}

	responses, err := json.Marshal(req.Responses)
	if err != nil {
		return nil, err
	}

	var out *SubmitAssessmentResult
	record := func() error {
		var err error
		out, err = s.record(ctx, traineeID, req, result, responses)
		return err
	}

	// 调用方指定了编号时冲突直接返回
	if req.AttemptNumber > 0 {
		if err := record(); err != nil {
			return nil, err
		}
		return out, nil
	}

	err = retry.Do(record,
		retry.Context(ctx),
		retry.Attempts(s.MaxRetries),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetriableConflict),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.Warn("Retrying assessment submission",
				zap.Uint("trainee_id", traineeID),
				zap.Uint("module_id", req.ModuleID),
				zap.Uint("retry", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// record 一个事务内：锁进度行、分配编号、写入提交记录、更新进度
func (s *AssessmentService) record(ctx context.Context, traineeID uint, req SubmitAssessmentRequest, result *ScoreResult, responses []byte) (*SubmitAssessmentResult, error) {
	var out *SubmitAssessmentResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		p, err := progressRepo.LockOrCreate(traineeID, req.ModuleID)
		if err != nil {
			return err
		}

		next := p.AssessmentAttempts + 1
		if req.AttemptNumber > 0 && req.AttemptNumber != next {
			return util.NewConflictError("attempt number out of sequence", false)
		}

		now := s.Now()
		attempt := &model.AssessmentAttempt{
			TraineeID:      traineeID,
			ModuleID:       req.ModuleID,
			AttemptNumber:  next,
			Responses:      responses,
			Score:          result.Score,
			TotalPoints:    result.TotalPoints,
			Passed:         result.Passed,
			RequiresReview: result.RequiresReview,
			SubmittedAt:    now,
		}
		if err := s.AttemptRepo.WithTx(tx).Create(attempt); err != nil {
			if database.IsDuplicateKey(err) {
				return util.NewConflictError("attempt number already taken", true)
			}
			return err
		}

		ApplyAttempt(p, result, now)
		if err := progressRepo.Save(p); err != nil {
			return err
		}

		out = &SubmitAssessmentResult{AttemptNumber: next, ScoreResult: *result, Progress: p}
		return nil
	})
	return out, err
}

func isRetriableConflict(err error) bool {
	var conflict *util.ConflictError
	return errors.As(err, &conflict) && conflict.Retriable
}

// ListAttempts 按编号升序
func (s *AssessmentService) ListAttempts(traineeID, moduleID uint) ([]model.AssessmentAttempt, error) {
	if _, err := s.Progress.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFoundError("module", moduleID)
		}
		return nil, err
	}
	return s.AttemptRepo.ListByTraineeModule(traineeID, moduleID)
}
