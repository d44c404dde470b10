package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Find(traineeID, moduleID uint) (*model.ModuleProgress, error) {
	var p model.ModuleProgress
	err := r.DB.Where("trainee_id = ? AND module_id = ?", traineeID, moduleID).First(&p).Error
	return &p, err
}

// LockOrCreate 事务内加行锁读取进度，不存在则先插入 not_started 行
// 并发插入冲突时重新读取对方写入的行
func (r *ProgressRepository) LockOrCreate(traineeID, moduleID uint) (*model.ModuleProgress, error) {
	p := model.NewModuleProgress(traineeID, moduleID)
	err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(p).Error
	if err != nil {
		return nil, err
	}

	var locked model.ModuleProgress
	err = r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trainee_id = ? AND module_id = ?", traineeID, moduleID).
		First(&locked).Error
	if err != nil {
		return nil, err
	}
	return &locked, nil
}

func (r *ProgressRepository) Save(p *model.ModuleProgress) error {
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) ListByTrainee(traineeID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Where("trainee_id = ?", traineeID).Order("module_id asc").Find(&rows).Error
	return rows, err
}
