package repository

import (
	"testing"
	"time"

	"care_training_backend/internal/model"
	"care_training_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveClassRepositoryRegistrations(t *testing.T) {
	db := testutil.NewTestDB(t)
	ann := testutil.CreateUser(t, db, "ann", model.Trainee)
	bob := testutil.CreateUser(t, db, "bob", model.Trainee)
	repo := NewLiveClassRepository(db)

	class := &model.LiveClass{Title: "Dementia care Q&A", StartsAt: time.Now().Add(time.Hour), DurationMinutes: 45}
	other := &model.LiveClass{Title: "Wound care", StartsAt: time.Now().Add(2 * time.Hour), DurationMinutes: 30}
	require.NoError(t, repo.Create(class))
	require.NoError(t, repo.Create(other))

	require.NoError(t, repo.CreateRegistration(&model.LiveClassRegistration{ClassID: class.ID, TraineeID: ann.ID}))
	require.NoError(t, repo.CreateRegistration(&model.LiveClassRegistration{ClassID: class.ID, TraineeID: bob.ID}))
	assert.Error(t, repo.CreateRegistration(&model.LiveClassRegistration{ClassID: class.ID, TraineeID: bob.ID}))

	counts, err := repo.CountRegistrations([]uint{class.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[class.ID])
	assert.Equal(t, int64(0), counts[other.ID])

	mine, err := repo.RegisteredClassIDs(ann.ID, []uint{class.ID, other.ID})
	require.NoError(t, err)
	assert.True(t, mine[class.ID])
	assert.False(t, mine[other.ID])

	n, err := repo.DeleteRegistration(class.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.DeleteRegistration(class.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	upcoming, err := repo.ListStartingAfter(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, class.ID, upcoming[0].ID)
}
