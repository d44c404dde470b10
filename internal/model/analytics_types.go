package model

import "time"

// ModuleStat 单个模块的完成情况
type ModuleStat struct {
	ModuleID            uint    `json:"moduleId"`
	Position            int     `json:"position"`
	Title               string  `json:"title"`
	StartedCount        int64   `json:"startedCount"`
	CompletedCount      int64   `json:"completedCount"`
	CompletionRate      float64 `json:"completionRate"` // 完成人数 / 学员总数
	AverageHighestScore float64 `json:"averageHighestScore"`
}

// AnalyticsSummary 管理后台概览
type AnalyticsSummary struct {
	TotalTrainees      int64        `json:"totalTrainees"`
	CertificatesIssued int64        `json:"certificatesIssued"`
	AttemptsTotal      int64        `json:"attemptsTotal"`
	Modules            []ModuleStat `json:"modules"`
}

// ProgressExportRow 导出 CSV 的一行
type ProgressExportRow struct {
	TraineeEmail string
	TraineeName  string
	ModulePos    int
	ModuleTitle  string
	Status       ProgressStatus
	Attempts     int
	HighestScore *int
	CompletedAt  *time.Time
}
