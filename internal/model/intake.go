package model

import (
	"time"

	"gorm.io/datatypes"
)

type IntakeBand string

const (
	IntakeLow      IntakeBand = "low"
	IntakeModerate IntakeBand = "moderate"
	IntakeHigh     IntakeBand = "high"
)

// IntakeQuestion 病人入院评估问卷，固定顺序
// swagger:model IntakeQuestion
type IntakeQuestion struct {
	ID       uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Position int            `gorm:"uniqueIndex;not null" json:"position"`
	Text     string         `gorm:"type:text;not null" json:"text"`
	Options  []IntakeOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (IntakeQuestion) TableName() string {
	return "intake_questions"
}

type IntakeOption struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Label      string `gorm:"size:255;not null" json:"label"`
	Points     int    `gorm:"not null" json:"points"`
}

func (IntakeOption) TableName() string {
	return "intake_options"
}

// swagger:model IntakeSubmission
type IntakeSubmission struct {
	BaseModel
	PatientRef  string         `gorm:"size:64;index;not null" json:"patientRef"`
	SubmittedBy *uint          `gorm:"type:bigint unsigned" json:"submittedBy,omitempty"`
	Responses   datatypes.JSON `json:"responses" swaggertype:"array,object"`
	Score       int            `json:"score"`
	MaxScore    int            `json:"maxScore"`
	Band        IntakeBand     `gorm:"size:20" json:"band"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

func (IntakeSubmission) TableName() string {
	return "intake_submissions"
}

type IntakeResponse struct {
	QuestionID uint `json:"questionId" validate:"required"`
	OptionID   uint `json:"optionId" validate:"required"`
}
