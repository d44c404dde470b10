package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) WithTx(tx *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: tx}
}

func (r *ModuleRepository) Create(m *model.TrainingModule) error {
	return r.DB.Create(m).Error
}

func (r *ModuleRepository) Update(m *model.TrainingModule) error {
	return r.DB.Save(m).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.First(&m, id).Error
	return &m, err
}

// ListPublished 按 position, id 排序，解锁规则依赖这个顺序
func (r *ModuleRepository) ListPublished() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Where("is_published = ?", true).
		Order("position asc, id asc").
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ListAll() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Order("position asc, id asc").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) CountPublished() (int64, error) {
	var count int64
	err := r.DB.Model(&model.TrainingModule{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

// Create 题目和选项一起写入
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

// ListByModule 按 position, id 排序，选项按字母排序
func (r *QuestionRepository) ListByModule(moduleID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("module_id = ?", moduleID).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("letter asc, id asc")
		}).
		Order("position asc, id asc").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByModule(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}
