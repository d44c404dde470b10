package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var progressCSVHeader = []string{
	"trainee_email",
	"trainee_name",
	"module_order",
	"module_title",
	"status",
	"attempts",
	"highest_score",
	"completed_at",
}

type AnalyticsService struct {
	Repo        *repository.AnalyticsRepository
	UserRepo    *repository.UserRepository
	CertRepo    *repository.CertificateRepository
	AttemptRepo *repository.AttemptRepository
}

func NewAnalyticsService(
	repo *repository.AnalyticsRepository,
	userRepo *repository.UserRepository,
	certRepo *repository.CertificateRepository,
	attemptRepo *repository.AttemptRepository,
) *AnalyticsService {
	return &AnalyticsService{
		Repo:        repo,
		UserRepo:    userRepo,
		CertRepo:    certRepo,
		AttemptRepo: attemptRepo,
	}
}

func (s *AnalyticsService) Summary() (*model.AnalyticsSummary, error) {
	trainees, err := s.UserRepo.CountByRole(model.Trainee)
	if err != nil {
		return nil, err
	}
	certs, err := s.CertRepo.Count()
	if err != nil {
		return nil, err
	}
	attempts, err := s.AttemptRepo.CountAll()
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.ModuleStats()
	if err != nil {
		return nil, err
	}

	for i := range stats {
		if trainees > 0 {
			stats[i].CompletionRate = float64(stats[i].CompletedCount) / float64(trainees)
		}
	}
	return &model.AnalyticsSummary{
		TotalTrainees:      trainees,
		CertificatesIssued: certs,
		AttemptsTotal:      attempts,
		Modules:            stats,
	}, nil
}

// ExportProgressCSV 逐行写出，未完成的模块 completed_at 为空
func (s *AnalyticsService) ExportProgressCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(progressCSVHeader); err != nil {
		return err
	}

	err := s.Repo.EachProgressRow(func(row model.ProgressExportRow) error {
		highest := ""
		if row.HighestScore != nil {
			highest = strconv.Itoa(*row.HighestScore)
		}
		completed := ""
		if row.CompletedAt != nil {
			completed = row.CompletedAt.UTC().Format(time.RFC3339)
		}
		return cw.Write([]string{
			row.TraineeEmail,
			row.TraineeName,
			strconv.Itoa(row.ModulePos),
			row.ModuleTitle,
			string(row.Status),
			strconv.Itoa(row.Attempts),
			highest,
			completed,
		})
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
