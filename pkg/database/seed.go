package database

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

var intakeQuestionTexts = []string{
	"How often does the patient need help getting out of bed?",
	"How often does the patient need help with bathing?",
	"How often does the patient need help with dressing?",
	"How often does the patient need help using the toilet?",
	"How often does the patient need help eating meals?",
	"How often does the patient need help walking indoors?",
	"How often has the patient fallen in the last six months?",
	"How often does the patient forget recent conversations?",
	"How often does the patient become confused about time or place?",
	"How often does the patient miss prescribed medication?",
	"How often does the patient report pain that limits activity?",
	"How often does the patient experience shortness of breath?",
	"How often does the patient have trouble sleeping through the night?",
	"How often does the patient seem low in mood or withdrawn?",
	"How often does the patient become agitated or distressed?",
	"How often does the patient have difficulty swallowing?",
	"How often does the patient skip meals or lose appetite?",
	"How often does the patient experience incontinence?",
	"How often does the patient need help managing personal finances?",
	"How often does the patient struggle to communicate needs?",
	"How often does the patient have skin breakdown or pressure sores?",
	"How often does the patient need help with housekeeping?",
	"How often is the patient left alone without support?",
	"How often does the primary caregiver report feeling overwhelmed?",
	"How often does the patient visit the emergency department?",
}

var intakeOptionLabels = []string{"Never", "Sometimes", "Often", "Always"}

// SeedIntakeQuestions 问卷为空时写入 25 道默认题目
func SeedIntakeQuestions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.IntakeQuestion{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, text := range intakeQuestionTexts {
			q := model.IntakeQuestion{Position: i + 1, Text: text}
			for points, label := range intakeOptionLabels {
				q.Options = append(q.Options, model.IntakeOption{Label: label, Points: points})
			}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
