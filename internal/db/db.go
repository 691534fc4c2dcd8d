package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"file-lifecycle-manager/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var AppDb *gorm.DB

func DSN(cfg config.Config) string {
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=disable",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)
}

func ConnectDb(cfg config.Config, zlog zerolog.Logger) error {
	level := logger.Info
	if cfg.Environment == "production" {
		level = logger.Error
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      level,
			Colorful:      cfg.Environment == "development",
		},
	)

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{Logger: newLogger})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	AppDb = db
	zlog.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to db")
	return nil
}

func CloseDb(zlog zerolog.Logger) {
	if AppDb == nil {
		return
	}
	sqlDB, err := AppDb.DB()
	if err != nil {
		zlog.Error().Err(err).Msg("failed to get sql db")
		return
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Error().Err(err).Msg("failed to close db")
		return
	}
	zlog.Info().Msg("db closed")
}
