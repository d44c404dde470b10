package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// ModuleProgress 每个学员 x 模块一行，只由进度仓储更新，不删除
// swagger:model ModuleProgress
type ModuleProgress struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	TraineeID           uint           `gorm:"uniqueIndex:idx_progress_trainee_module;type:bigint unsigned;not null" json:"traineeId"`
	ModuleID            uint           `gorm:"uniqueIndex:idx_progress_trainee_module;type:bigint unsigned;not null" json:"moduleId"`
	Status              ProgressStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	VideoWatched        bool           `gorm:"default:false" json:"videoWatched"`
	TranscriptViewed    bool           `gorm:"default:false" json:"transcriptViewed"`
	AssessmentCompleted bool           `gorm:"default:false" json:"assessmentCompleted"`
	AssessmentScore     *int           `json:"assessmentScore"`
	HighestScore        *int           `json:"highestScore"`
	AssessmentAttempts  int            `gorm:"default:0" json:"assessmentAttempts"`
	CompletedAt         *time.Time     `json:"completedAt"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// NewModuleProgress 未访问过的模块视为 not_started
func NewModuleProgress(traineeID, moduleID uint) *ModuleProgress {
	return &ModuleProgress{
		TraineeID: traineeID,
		ModuleID:  moduleID,
		Status:    StatusNotStarted,
	}
}

// Touch 标记已开始，completed 不回退
func (p *ModuleProgress) Touch() {
	if p.Status == "" || p.Status == StatusNotStarted {
		p.Status = StatusInProgress
	}
}

// MarkCompleted completedAt 只设置一次
func (p *ModuleProgress) MarkCompleted(at time.Time) {
	p.Status = StatusCompleted
	if p.CompletedAt == nil {
		t := at
		p.CompletedAt = &t
	}
}
