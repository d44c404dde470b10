package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummaryAndExport(t *testing.T) {
	db := testutil.NewTestDB(t)
	ann := testutil.CreateUser(t, db, "ann", model.Trainee)
	bob := testutil.CreateUser(t, db, "bob", model.Trainee)
	testutil.CreateUser(t, db, "root", model.Admin)
	m1 := testutil.CreateModule(t, db, 1, 1, 1)
	m2 := testutil.CreateModule(t, db, 2, 1, 1)

	high := 9
	done := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.ModuleProgress{
		{TraineeID: ann.ID, ModuleID: m1.ID, Status: model.StatusCompleted, HighestScore: &high, AssessmentAttempts: 2, CompletedAt: &done},
		{TraineeID: bob.ID, ModuleID: m1.ID, Status: model.StatusInProgress, AssessmentAttempts: 0},
	}
	require.NoError(t, db.Create(&rows).Error)
	require.NoError(t, db.Create(&model.AssessmentAttempt{TraineeID: ann.ID, ModuleID: m1.ID, AttemptNumber: 1, SubmittedAt: done}).Error)
	require.NoError(t, db.Create(&model.AssessmentAttempt{TraineeID: ann.ID, ModuleID: m1.ID, AttemptNumber: 2, SubmittedAt: done}).Error)

	s := NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewUserRepository(db),
		repository.NewCertificateRepository(db),
		repository.NewAttemptRepository(db),
	)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalTrainees)
	assert.Equal(t, int64(2), summary.AttemptsTotal)
	assert.Zero(t, summary.CertificatesIssued)
	require.Len(t, summary.Modules, 2)
	assert.Equal(t, m1.ID, summary.Modules[0].ModuleID)
	assert.Equal(t, int64(2), summary.Modules[0].StartedCount)
	assert.Equal(t, int64(1), summary.Modules[0].CompletedCount)
	assert.InDelta(t, 0.5, summary.Modules[0].CompletionRate, 1e-9)
	assert.Equal(t, m2.ID, summary.Modules[1].ModuleID)
	assert.Zero(t, summary.Modules[1].CompletionRate)

	var buf bytes.Buffer
	require.NoError(t, s.ExportProgressCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, progressCSVHeader, records[0])
	assert.Equal(t, []string{"ann@example.com", "ann", "1", "Module 1", "completed", "2", "9", "2026-03-01T10:00:00Z"}, records[1])
	assert.Equal(t, []string{"bob@example.com", "bob", "1", "Module 1", "in_progress", "0", "", ""}, records[2])
}
