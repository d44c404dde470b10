package database

import (
	"care_training_backend/internal/config"
	"care_training_backend/internal/model"
	"context"
	"fmt"

	applog "care_training_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)
}

// Open 建立 MySQL 连接，不做迁移
func Open(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	applog.Log.Info("Database connection established", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
	return db, nil
}

// Models 所有需要迁移的表
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.TrainingModule{},
		&model.Question{},
		&model.QuestionOption{},
		&model.ModuleProgress{},
		&model.AssessmentAttempt{},
		&model.Certificate{},
		&model.ForumThread{},
		&model.ForumReply{},
		&model.ForumLike{},
		&model.LiveClass{},
		&model.LiveClassRegistration{},
		&model.IntakeQuestion{},
		&model.IntakeOption{},
		&model.IntakeSubmission{},
	}
}

// Migrate 建表并写入默认数据
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	applog.Log.Info("Database migration completed")

	if err := SeedIntakeQuestions(db); err != nil {
		return fmt.Errorf("seed intake questions: %w", err)
	}
	return nil
}

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	db, err := Open(cfg, mode)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Ping 健康检查使用
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
