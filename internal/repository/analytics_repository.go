package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

type moduleAgg struct {
	ModuleID     uint
	Started      int64
	Completed    int64
	AvgHighScore *float64
}

// ModuleStats 每个模块的开始/完成人数和最高分均值，completionRate 由 service 计算
func (r *AnalyticsRepository) ModuleStats() ([]model.ModuleStat, error) {
	modules, err := NewModuleRepository(r.DB).ListAll()
	if err != nil {
		return nil, err
	}

	var aggs []moduleAgg
	err = r.DB.Model(&model.ModuleProgress{}).
		Select(`module_id,
			SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS started,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed,
			AVG(highest_score) AS avg_high_score`, model.StatusNotStarted, model.StatusCompleted).
		Group("module_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint]moduleAgg, len(aggs))
	for _, a := range aggs {
		byModule[a.ModuleID] = a
	}

	stats := make([]model.ModuleStat, 0, len(modules))
	for _, m := range modules {
		a := byModule[m.ID]
		stat := model.ModuleStat{
			ModuleID:       m.ID,
			Position:       m.Position,
			Title:          m.Title,
			StartedCount:   a.Started,
			CompletedCount: a.Completed,
		}
		if a.AvgHighScore != nil {
			stat.AverageHighestScore = *a.AvgHighScore
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// EachProgressRow 按学员邮箱、模块顺序逐行回调，避免一次性加载
func (r *AnalyticsRepository) EachProgressRow(fn func(row model.ProgressExportRow) error) error {
	rows, err := r.DB.Table("module_progress AS p").
		Select(`u.email, u.name, m.position, m.title, p.status,
			p.assessment_attempts, p.highest_score, p.completed_at`).
		Joins("JOIN users u ON u.id = p.trainee_id").
		Joins("JOIN training_modules m ON m.id = p.module_id").
		Where("u.deleted_at IS NULL AND m.deleted_at IS NULL").
		Order("u.email asc, m.position asc").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row model.ProgressExportRow
		if err := rows.Scan(
			&row.TraineeEmail,
			&row.TraineeName,
			&row.ModulePos,
			&row.ModuleTitle,
			&row.Status,
			&row.Attempts,
			&row.HighestScore,
			&row.CompletedAt,
		); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
