package repository

import (
	"errors"
	"testing"

	"care_training_backend/internal/model"
	"care_training_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProgressRepositoryLockOrCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "nina", model.Trainee)
	mod := testutil.CreateModule(t, db, 1, 1, 1)
	repo := NewProgressRepository(db)

	_, err := repo.Find(user.ID, mod.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var first, second *model.ModuleProgress
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		first, err = repo.WithTx(tx).LockOrCreate(user.ID, mod.ID)
		return err
	}))
	assert.Equal(t, model.StatusNotStarted, first.Status)
	assert.NotZero(t, first.ID)

	first.VideoWatched = true
	first.Touch()
	require.NoError(t, repo.Save(first))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		second, err = repo.WithTx(tx).LockOrCreate(user.ID, mod.ID)
		return err
	}))
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.VideoWatched)
	assert.Equal(t, model.StatusInProgress, second.Status)

	rows, err := repo.ListByTrainee(user.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAttemptRepositoryUniqueNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "omar", model.Trainee)
	mod := testutil.CreateModule(t, db, 1, 1, 1)
	repo := NewAttemptRepository(db)

	require.NoError(t, repo.Create(&model.AssessmentAttempt{TraineeID: user.ID, ModuleID: mod.ID, AttemptNumber: 1}))
	require.NoError(t, repo.Create(&model.AssessmentAttempt{TraineeID: user.ID, ModuleID: mod.ID, AttemptNumber: 2}))

	err := repo.Create(&model.AssessmentAttempt{TraineeID: user.ID, ModuleID: mod.ID, AttemptNumber: 2})
	require.Error(t, err)

	attempts, err := repo.ListByTraineeModule(user.ID, mod.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 1, attempts[0].AttemptNumber)
	assert.Equal(t, 2, attempts[1].AttemptNumber)

	total, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestQuestionRepositoryOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	mod := testutil.CreateModule(t, db, 1, 0, 0)
	repo := NewQuestionRepository(db)

	for _, pos := range []int{3, 1, 2} {
		require.NoError(t, repo.Create(&model.Question{
			ModuleID: mod.ID,
			Text:     "q",
			Type:     model.MultipleChoice,
			Points:   1,
			Position: pos,
			Options: []model.QuestionOption{
				{Letter: "B", Text: "b", IsCorrect: true},
				{Letter: "A", Text: "a"},
			},
		}))
	}

	questions, err := repo.ListByModule(mod.ID)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for i, q := range questions {
		assert.Equal(t, i+1, q.Position)
		require.Len(t, q.Options, 2)
		assert.Equal(t, "A", q.Options[0].Letter)
	}
}
