package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/util"
	"fmt"
	"strings"
)

// PassThresholdPercent 固定及格线
const PassThresholdPercent = 80

type ShortAnswerPolicy string

const (
	ShortAnswerManualReview ShortAnswerPolicy = util.ShortAnswerManualReview
	ShortAnswerAwardFull    ShortAnswerPolicy = util.ShortAnswerAwardFull
)

// QuestionResult 单题评分结果
type QuestionResult struct {
	QuestionID     uint   `json:"questionId"`
	IsCorrect      bool   `json:"isCorrect"`
	PointsEarned   int    `json:"pointsEarned"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	RequiresReview bool   `json:"requiresReview,omitempty"`
}

type ScoreResult struct {
	Score           int              `json:"score"`
	TotalPoints     int              `json:"totalPoints"`
	Passed          bool             `json:"passed"`
	RequiresReview  bool             `json:"requiresReview"`
	DetailedResults []QuestionResult `json:"detailedResults"`
}

// Passed score/total >= 80%，整数运算避免浮点误差
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return score*100 >= total*PassThresholdPercent
}

// ValidateResponses 每道题恰好一个回答，不能有未知题目
func ValidateResponses(questions []model.Question, responses []model.AttemptResponse) error {
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var fields []util.FieldError
	seen := make(map[uint]bool, len(responses))
	for i, r := range responses {
		field := fmt.Sprintf("responses[%d].questionId", i)
		switch {
		case !known[r.QuestionID]:
			fields = append(fields, util.FieldError{Field: field, Error: fmt.Sprintf("unknown question %d", r.QuestionID)})
		case seen[r.QuestionID]:
			fields = append(fields, util.FieldError{Field: field, Error: fmt.Sprintf("duplicate response for question %d", r.QuestionID)})
		}
		seen[r.QuestionID] = true
	}

	for _, q := range questions {
		if !seen[q.ID] {
			fields = append(fields, util.FieldError{Field: "responses", Error: fmt.Sprintf("missing response for question %d", q.ID)})
		}
	}

	if len(fields) > 0 {
		return util.NewValidationError(util.ErrIncompleteSubmit, fields...)
	}
	return nil
}

// Score 纯函数，按题目顺序输出每题结果
func Score(questions []model.Question, responses []model.AttemptResponse, policy ShortAnswerPolicy) (*ScoreResult, error) {
	if err := ValidateResponses(questions, responses); err != nil {
		return nil, err
	}

	answers := make(map[uint]string, len(responses))
	for _, r := range responses {
		answers[r.QuestionID] = r.SelectedAnswer
	}

	result := &ScoreResult{DetailedResults: make([]QuestionResult, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		selected := answers[q.ID]
		qr := QuestionResult{QuestionID: q.ID, SelectedAnswer: selected}
		result.TotalPoints += q.Points

		switch q.Type {
		case model.ShortAnswer:
			qr.CorrectAnswer = q.ReferenceAnswer
			if policy == ShortAnswerAwardFull {
				if strings.TrimSpace(selected) != "" {
					qr.IsCorrect = true
					qr.PointsEarned = q.Points
				}
			} else {
				qr.RequiresReview = true
				result.RequiresReview = true
			}
		default:
			if correct, ok := q.CorrectOption(); ok {
				qr.CorrectAnswer = correct.Letter
				if strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(correct.Letter)) {
					qr.IsCorrect = true
					qr.PointsEarned = q.Points
				}
			}
		}

		result.Score += qr.PointsEarned
		result.DetailedResults = append(result.DetailedResults, qr)
	}

	result.Passed = Passed(result.Score, result.TotalPoints)
	return result, nil
}
