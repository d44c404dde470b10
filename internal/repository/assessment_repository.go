package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptRepository 测评提交记录，只追加
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(a *model.AssessmentAttempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) ListByTraineeModule(traineeID, moduleID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	err := r.DB.Where("trainee_id = ? AND module_id = ?", traineeID, moduleID).
		Order("attempt_number asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentAttempt{}).Count(&count).Error
	return count, err
}
