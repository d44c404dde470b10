package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

type IntakeRepository struct {
	DB *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) *IntakeRepository {
	return &IntakeRepository{DB: db}
}

func (r *IntakeRepository) ListQuestions() ([]model.IntakeQuestion, error) {
	var questions []model.IntakeQuestion
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("points asc, id asc")
	}).Order("position asc").Find(&questions).Error
	return questions, err
}

func (r *IntakeRepository) CreateSubmission(s *model.IntakeSubmission) error {
	return r.DB.Create(s).Error
}

func (r *IntakeRepository) ListSubmissions(offset, limit int) ([]model.IntakeSubmission, int64, error) {
	var subs []model.IntakeSubmission
	var total int64
	if err := r.DB.Model(&model.IntakeSubmission{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("submitted_at desc, id desc").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, total, err
}
