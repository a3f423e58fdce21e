package main

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type mysqlConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	DBName string `yaml:"dbname"`
}

const (
	dispatchSent    = "sent"
	dispatchFailed  = "failed"
	dispatchSkipped = "skipped"
)

type NotificationDispatch struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement"`
	DispatchID    string         `gorm:"type:char(36);not null;uniqueIndex:uk_dispatch_id"`
	PlateNo       string         `gorm:"size:32;not null;index:idx_plate_created,priority:1"`
	ViolationType string         `gorm:"size:128;not null"`
	ToEmail       string         `gorm:"size:255;not null"`
	Provider      string         `gorm:"size:32;not null"`
	Status        string         `gorm:"size:16;not null;index:idx_status_created,priority:1"`
	Error         string         `gorm:"size:1024"`
	PayloadJSON   datatypes.JSON `gorm:"type:json"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_plate_created,priority:2;index:idx_status_created,priority:2"`
	CompletedAt   time.Time      `gorm:"not null"`
}

func (NotificationDispatch) TableName() string {
	return "notification_dispatch"
}

func openDB(cfg databaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.MySQL.User,
			cfg.MySQL.Pass,
			cfg.MySQL.Host,
			cfg.MySQL.Port,
			cfg.MySQL.DBName,
		)
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&NotificationDispatch{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
