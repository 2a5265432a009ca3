package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/holiday"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

func OpenGorm(dsn string, log *zap.Logger) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), log)
}

// OpenGormWithDialector opens and pings db. Tests pass a mocked dialector.
func OpenGormWithDialector(dial gorm.Dialector, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("gorm: connected", zap.String("dialect", dial.Name()))
	return db, nil
}

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&leavetype.LeaveType{},
		&holiday.Holiday{},
		&balance.LeaveBalance{},
		&workflow.ApprovalWorkflow{},
		&leave.LeaveRequest{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
