package service

import (
	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"
	"care_training_backend/pkg/monitoring"
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Eligibility struct {
	Eligible         bool               `json:"eligible"`
	CompletedModules int                `json:"completedModules"`
	TotalModules     int                `json:"totalModules"`
	AverageScore     float64            `json:"averageScore"`
	Certificate      *model.Certificate `json:"certificate,omitempty"`
}

type CertificateService struct {
	CertRepo     *repository.CertificateRepository
	ProgressRepo *repository.ProgressRepository
	ModuleRepo   *repository.ModuleRepository
	UserRepo     *repository.UserRepository
	Renderer     CertificateRenderer
	Storage      StorageProvider
	Cfg          config.CertificateConfig
	Now          func() time.Time
}

func NewCertificateService(
	certRepo *repository.CertificateRepository,
	progressRepo *repository.ProgressRepository,
	moduleRepo *repository.ModuleRepository,
	userRepo *repository.UserRepository,
	renderer CertificateRenderer,
	storage StorageProvider,
	cfg config.CertificateConfig,
) *CertificateService {
	return &CertificateService{
		CertRepo:     certRepo,
		ProgressRepo: progressRepo,
		ModuleRepo:   moduleRepo,
		UserRepo:     userRepo,
		Renderer:     renderer,
		Storage:      storage,
		Cfg:          cfg,
		Now:          time.Now,
	}
}

// Evaluate 纯函数：全部已发布模块完成才有资格，平均分只统计已完成模块
func Evaluate(modules []model.TrainingModule, progress []model.ModuleProgress) Eligibility {
	published := make(map[uint]bool, len(modules))
	for _, m := range modules {
		published[m.ID] = true
	}

	var completed, scored, sum int
	for _, p := range progress {
		if !published[p.ModuleID] || p.Status != model.StatusCompleted {
			continue
		}
		completed++
		if p.AssessmentScore != nil {
			sum += *p.AssessmentScore
			scored++
		}
	}

	e := Eligibility{
		CompletedModules: completed,
		TotalModules:     len(modules),
	}
	if scored > 0 {
		e.AverageScore = float64(sum) / float64(scored)
	}
	e.Eligible = e.TotalModules > 0 && e.CompletedModules == e.TotalModules
	return e
}

func (s *CertificateService) CheckEligibility(traineeID uint) (*Eligibility, error) {
	modules, err := s.ModuleRepo.ListPublished()
	if err != nil {
		return nil, err
	}
	rows, err := s.ProgressRepo.ListByTrainee(traineeID)
	if err != nil {
		return nil, err
	}

	e := Evaluate(modules, rows)
	cert, err := s.CertRepo.FindByTrainee(traineeID)
	switch {
	case err == nil:
		e.Certificate = cert
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return &e, nil
}

// Issue 已有证书直接返回，不重新生成
func (s *CertificateService) Issue(ctx context.Context, traineeID uint) (*model.Certificate, error) {
	existing, err := s.CertRepo.FindByTrainee(traineeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	e, err := s.CheckEligibility(traineeID)
	if err != nil {
		return nil, err
	}
	if !e.Eligible {
		return nil, util.NewValidationError(util.ErrNotEligible,
			util.FieldError{Field: "completedModules", Error: "all modules must be completed"})
	}

	user, err := s.UserRepo.FindByID(traineeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFoundError("trainee", traineeID)
		}
		return nil, err
	}

	now := s.Now()
	doc := CertificateDocument{
		SerialNumber:     uuid.New().String(),
		TraineeName:      user.Name,
		ProgramName:      s.Cfg.ProgramName,
		Organization:     s.Cfg.Organization,
		CompletedModules: e.CompletedModules,
		AverageScore:     e.AverageScore,
		IssuedAt:         now,
	}

	localPath, err := s.Renderer.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer os.Remove(localPath)

	key := "certificates/" + doc.SerialNumber + ".pdf"
	url, err := s.Storage.UploadFile(ctx, key, localPath, util.MimePDF)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		TraineeID:        traineeID,
		SerialNumber:     doc.SerialNumber,
		TraineeName:      user.Name,
		CompletedModules: e.CompletedModules,
		AverageScore:     e.AverageScore,
		DocumentURL:      url,
		IssuedAt:         now,
	}
	if err := s.CertRepo.Create(cert); err != nil {
		if !database.IsDuplicateKey(err) {
			return nil, err
		}
		// 并发签发，保留先写入的记录
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned certificate document", zap.String("key", key), zap.Error(delErr))
		}
		return s.CertRepo.FindByTrainee(traineeID)
	}

	monitoring.CertificatesIssued.Inc()
	logger.Log.Info("Certificate issued",
		zap.Uint("trainee_id", traineeID),
		zap.String("serial", cert.SerialNumber),
	)
	return cert, nil
}

func (s *CertificateService) Get(traineeID uint) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByTrainee(traineeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("certificate", nil)
	}
	return cert, err
}

func (s *CertificateService) Verify(serial string) (*model.Certificate, error) {
	if _, err := uuid.Parse(serial); err != nil {
		return nil, util.NewValidationError("invalid serial number", util.FieldError{Field: "serial", Error: err.Error()})
	}
	cert, err := s.CertRepo.FindBySerial(serial)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("certificate", serial)
	}
	return cert, err
}
