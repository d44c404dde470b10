package model

import (
	"time"

	"gorm.io/datatypes"
)

// AssessmentAttempt 只追加，每次提交一行
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TraineeID      uint           `gorm:"uniqueIndex:idx_attempt_number;type:bigint unsigned;not null" json:"traineeId"`
	ModuleID       uint           `gorm:"uniqueIndex:idx_attempt_number;type:bigint unsigned;not null" json:"moduleId"`
	AttemptNumber  int            `gorm:"uniqueIndex:idx_attempt_number;not null" json:"attemptNumber"`
	Responses      datatypes.JSON `json:"responses" swaggertype:"array,object"`
	Score          int            `gorm:"not null" json:"score"`
	TotalPoints    int            `gorm:"not null" json:"totalPoints"`
	Passed         bool           `gorm:"default:false" json:"passed"`
	RequiresReview bool           `gorm:"default:false" json:"requiresReview"`
	SubmittedAt    time.Time      `gorm:"not null" json:"submittedAt"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}

type AttemptResponse struct {
	QuestionID     uint   `json:"questionId" validate:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
}
