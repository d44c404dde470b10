package service

import (
	"testing"

	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/testutil"
	"care_training_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntakeBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.IntakeBand
	}{
		{0, model.IntakeLow},
		{25, model.IntakeLow},
		{26, model.IntakeModerate},
		{50, model.IntakeModerate},
		{51, model.IntakeHigh},
		{75, model.IntakeHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntakeBandFor(tt.score), "score %d", tt.score)
	}
}

// pickPoints 每道题选分值为 points 的选项
func pickPoints(questions []model.IntakeQuestion, points func(i int) int) []model.IntakeResponse {
	out := make([]model.IntakeResponse, 0, len(questions))
	for i, q := range questions {
		want := points(i)
		for _, o := range q.Options {
			if o.Points == want {
				out = append(out, model.IntakeResponse{QuestionID: q.ID, OptionID: o.ID})
				break
			}
		}
	}
	return out
}

func TestIntakeSubmit(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewIntakeService(repository.NewIntakeRepository(db))

	questions, err := s.Questions()
	require.NoError(t, err)
	require.Len(t, questions, 25)
	require.Len(t, questions[0].Options, 4)

	tests := []struct {
		name   string
		points func(i int) int
		score  int
		band   model.IntakeBand
	}{
		{"all never", func(int) int { return 0 }, 0, model.IntakeLow},
		{"all sometimes", func(int) int { return 1 }, 25, model.IntakeLow},
		{"mixed", func(i int) int { return 1 + i%2 }, 37, model.IntakeModerate},
		{"all always", func(int) int { return 3 }, 75, model.IntakeHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := s.Submit(nil, SubmitIntakeRequest{PatientRef: "P-001", Responses: pickPoints(questions, tt.points)})
			require.NoError(t, err)
			assert.Equal(t, tt.score, sub.Score)
			assert.Equal(t, 75, sub.MaxScore)
			assert.Equal(t, tt.band, sub.Band)
		})
	}

	page, err := s.ListSubmissions(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(len(tests)), page.Total)
	assert.Len(t, page.List.([]model.IntakeSubmission), 2)
}

func TestIntakeSubmitRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewIntakeService(repository.NewIntakeRepository(db))
	questions, err := s.Questions()
	require.NoError(t, err)
	all := pickPoints(questions, func(int) int { return 2 })

	wrongOption := append([]model.IntakeResponse{}, all...)
	wrongOption[0].OptionID = questions[1].Options[0].ID

	duplicate := append([]model.IntakeResponse{}, all...)
	duplicate[1].QuestionID = duplicate[0].QuestionID

	tests := []struct {
		name string
		req  SubmitIntakeRequest
	}{
		{"missing patient", SubmitIntakeRequest{Responses: all}},
		{"missing answers", SubmitIntakeRequest{PatientRef: "P", Responses: all[:24]}},
		{"option of another question", SubmitIntakeRequest{PatientRef: "P", Responses: wrongOption}},
		{"duplicate question", SubmitIntakeRequest{PatientRef: "P", Responses: duplicate}},
		{"no answers", SubmitIntakeRequest{PatientRef: "P"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Submit(nil, tt.req)
			require.Error(t, err)
			assert.True(t, util.IsValidation(err))
		})
	}

	page, err := s.ListSubmissions(1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
