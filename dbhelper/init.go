package dbhelper

import (
	"time"

	"paletteapi/config"
	"paletteapi/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupDB(cfg config.DatabaseConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get database handle")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)

	Migrate(db, &models.UserAccount{})
	Migrate(db, &models.UserPushToken{})
	Migrate(db, &models.StyleAnalysis{})
	Migrate(db, &models.WardrobeItem{})
	Migrate(db, &models.Conversation{})
	Migrate(db, &models.ChatMessage{})

	return db
}

// SetupTestDB connects to the database named by the TEST_DB_* variables.
func SetupTestDB(host string) *gorm.DB {
	return SetupDB(config.DatabaseConfig{
		Host:         host,
		Port:         5432,
		User:         envOr("TEST_DB_USERNAME", "palette"),
		Password:     envOr("TEST_DB_PASSWORD", "palette"),
		Name:         envOr("TEST_DB_NAME", "palette_test"),
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
}
