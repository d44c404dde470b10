package repository

import (
	"care_training_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LiveClassRepository struct {
	DB *gorm.DB
}

func NewLiveClassRepository(db *gorm.DB) *LiveClassRepository {
	return &LiveClassRepository{DB: db}
}

func (r *LiveClassRepository) WithTx(tx *gorm.DB) *LiveClassRepository {
	return &LiveClassRepository{DB: tx}
}

func (r *LiveClassRepository) Create(class *model.LiveClass) error {
	return r.DB.Create(class).Error
}

func (r *LiveClassRepository) FindByID(id uint) (*model.LiveClass, error) {
	var class model.LiveClass
	err := r.DB.First(&class, id).Error
	return &class, err
}

func (r *LiveClassRepository) LockByID(id uint) (*model.LiveClass, error) {
	var class model.LiveClass
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&class, id).Error
	return &class, err
}

// ListStartingAfter 结束时间在 Go 里判断，这里只按开始时间粗筛
func (r *LiveClassRepository) ListStartingAfter(from time.Time) ([]model.LiveClass, error) {
	var classes []model.LiveClass
	err := r.DB.Where("starts_at >= ?", from).Order("starts_at asc, id asc").Find(&classes).Error
	return classes, err
}

func (r *LiveClassRepository) CountRegistrations(classIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(classIDs))
	if len(classIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ClassID uint
		Total   int64
	}
	err := r.DB.Model(&model.LiveClassRegistration{}).
		Select("class_id, COUNT(*) AS total").
		Where("class_id IN ?", classIDs).
		Group("class_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ClassID] = row.Total
	}
	return counts, nil
}

func (r *LiveClassRepository) RegisteredClassIDs(traineeID uint, classIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if len(classIDs) == 0 {
		return set, nil
	}
	var ids []uint
	err := r.DB.Model(&model.LiveClassRegistration{}).
		Where("trainee_id = ? AND class_id IN ?", traineeID, classIDs).
		Pluck("class_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *LiveClassRepository) CountForClass(classID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LiveClassRegistration{}).Where("class_id = ?", classID).Count(&count).Error
	return count, err
}

func (r *LiveClassRepository) CreateRegistration(reg *model.LiveClassRegistration) error {
	return r.DB.Create(reg).Error
}

// DeleteRegistration 返回删除的行数
func (r *LiveClassRepository) DeleteRegistration(classID, traineeID uint) (int64, error) {
	result := r.DB.Where("class_id = ? AND trainee_id = ?", classID, traineeID).Delete(&model.LiveClassRegistration{})
	return result.RowsAffected, result.Error
}
