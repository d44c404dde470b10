package service

import (
	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
	Now      func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Now:      time.Now,
	}
}

// Register 注册的账号一律为学员
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.NewConflictError("email already registered", false)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.Trainee,
	}
	if err := s.UserRepo.Create(user); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, util.NewConflictError("email already registered", false)
		}
		return nil, err
	}
	logger.Log.Info("Trainee registered", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (*LoginResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if err := s.UserRepo.TouchLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) Profile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("user", userID)
	}
	return user, err
}

// CreateAdmin 供命令行工具使用
func (s *AuthService) CreateAdmin(name, email, password string) (*model.User, error) {
	user, err := s.Register(RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	user.Role = model.Admin
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
