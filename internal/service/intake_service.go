package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type SubmitIntakeRequest struct {
	PatientRef string                 `json:"patientRef" validate:"required,notblank,max=64"`
	Responses  []model.IntakeResponse `json:"responses" validate:"required,min=1,dive"`
}

// IntakeBandFor 0-25 low，26-50 moderate，51 以上 high
func IntakeBandFor(score int) model.IntakeBand {
	switch {
	case score <= 25:
		return model.IntakeLow
	case score <= 50:
		return model.IntakeModerate
	default:
		return model.IntakeHigh
	}
}

type IntakeService struct {
	Repo *repository.IntakeRepository
	Now  func() time.Time
}

func NewIntakeService(repo *repository.IntakeRepository) *IntakeService {
	return &IntakeService{Repo: repo, Now: time.Now}
}

func (s *IntakeService) Questions() ([]model.IntakeQuestion, error) {
	return s.Repo.ListQuestions()
}

// Submit 每道题必须且只能选一个属于该题的选项
func (s *IntakeService) Submit(submittedBy *uint, req SubmitIntakeRequest) (*model.IntakeSubmission, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions()
	if err != nil {
		return nil, err
	}

	options := make(map[uint]map[uint]int, len(questions))
	maxScore := 0
	for _, q := range questions {
		points := make(map[uint]int, len(q.Options))
		best := 0
		for _, o := range q.Options {
			points[o.ID] = o.Points
			if o.Points > best {
				best = o.Points
			}
		}
		options[q.ID] = points
		maxScore += best
	}

	var fields []util.FieldError
	answered := make(map[uint]bool, len(req.Responses))
	score := 0
	for i, r := range req.Responses {
		points, known := options[r.QuestionID]
		switch {
		case !known:
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("responses[%d].questionId", i), Error: fmt.Sprintf("unknown question %d", r.QuestionID)})
		case answered[r.QuestionID]:
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("responses[%d].questionId", i), Error: fmt.Sprintf("duplicate response for question %d", r.QuestionID)})
		default:
			p, ok := points[r.OptionID]
			if !ok {
				fields = append(fields, util.FieldError{Field: fmt.Sprintf("responses[%d].optionId", i), Error: fmt.Sprintf("option %d does not belong to question %d", r.OptionID, r.QuestionID)})
			}
			score += p
		}
		answered[r.QuestionID] = true
	}
	for _, q := range questions {
		if !answered[q.ID] {
			fields = append(fields, util.FieldError{Field: "responses", Error: fmt.Sprintf("missing response for question %d", q.ID)})
		}
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError(util.ErrIncompleteSubmit, fields...)
	}

	raw, err := json.Marshal(req.Responses)
	if err != nil {
		return nil, err
	}
	sub := &model.IntakeSubmission{
		PatientRef:  strings.TrimSpace(req.PatientRef),
		SubmittedBy: submittedBy,
		Responses:   raw,
		Score:       score,
		MaxScore:    maxScore,
		Band:        IntakeBandFor(score),
		SubmittedAt: s.Now(),
	}
	if err := s.Repo.CreateSubmission(sub); err != nil {
		return nil, err
	}
	logger.Log.Info("Intake submitted", zap.Uint("submission_id", sub.ID), zap.Int("score", score), zap.String("band", string(sub.Band)))
	return sub, nil
}

func (s *IntakeService) ListSubmissions(page, limit int) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	subs, total, err := s.Repo.ListSubmissions((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: subs, Total: total, Page: page, Limit: limit}, nil
}
