package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"care_training_backend/internal/config"
	"care_training_backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "db", Port: 3306, User: "u", Password: "p",
		DBName: "care", Charset: "utf8mb4", ParseTime: true,
	}
	assert.Equal(t, "u:p@tcp(db:3306)/care?charset=utf8mb4&parseTime=true&loc=Local", DSN(cfg))
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "mysql 1062", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1213, Message: "Deadlock"}, want: false},
		{name: "sqlite wrapped", err: fmt.Errorf("create: %w", errors.New("UNIQUE constraint failed: certificates.trainee_id")), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestPing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("gone away"))
	assert.Error(t, Ping(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSeedsIntakeOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var questions []model.IntakeQuestion
	require.NoError(t, db.Preload("Options").Order("position").Find(&questions).Error)
	require.Len(t, questions, 25)

	maxScore := 0
	for _, q := range questions {
		require.Len(t, q.Options, 4)
		best := 0
		for _, o := range q.Options {
			if o.Points > best {
				best = o.Points
			}
		}
		maxScore += best
	}
	assert.Equal(t, 75, maxScore)
}
