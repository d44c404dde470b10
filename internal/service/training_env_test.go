package service

import (
	"testing"
	"time"

	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/testutil"

	"gorm.io/gorm"
)

type trainingEnv struct {
	db         *gorm.DB
	progress   *ProgressService
	assessment *AssessmentService
	now        time.Time
}

func newTrainingEnv(t *testing.T, policy UnlockPolicy) *trainingEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	moduleRepo := repository.NewModuleRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	env := &trainingEnv{db: db, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	env.progress = NewProgressService(db, progressRepo, moduleRepo, NewPolicyHolder(policy))
	env.progress.Now = func() time.Time { return env.now }
	env.assessment = NewAssessmentService(db, env.progress,
		repository.NewQuestionRepository(db),
		progressRepo,
		repository.NewAttemptRepository(db),
		ShortAnswerManualReview, 3)
	env.assessment.Now = func() time.Time { return env.now }
	return env
}

// responsesFor 前 correct 道答 B，其余答 A
func (e *trainingEnv) responsesFor(t *testing.T, moduleID uint, correct int) []model.AttemptResponse {
	t.Helper()
	questions, err := e.assessment.QuestionRepo.ListByModule(moduleID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	out := make([]model.AttemptResponse, len(questions))
	for i, q := range questions {
		answer := "A"
		if i < correct {
			answer = "B"
		}
		out[i] = model.AttemptResponse{QuestionID: q.ID, SelectedAnswer: answer}
	}
	return out
}
