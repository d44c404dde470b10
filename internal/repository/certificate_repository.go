package repository

import (
	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) FindByTrainee(traineeID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("trainee_id = ?", traineeID).First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) FindBySerial(serial string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("serial_number = ?", serial).First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Count(&count).Error
	return count, err
}
