// Package repositories provides the data access layer.
// It owns the database handle, migrations, and all persistence logic.
package repositories

import (
	"log"
	"os"
	"time"

	"bastion/internal/config"
	"bastion/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB

// Redis is the shared Redis client used for risk-score caching.
// It stays nil when REDIS_HOST is not configured; callers must check.
var Redis *redis.Client

// DBConfig holds database connection pool configuration.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var dbConfig = DBConfig{
	MaxIdleConns:    10,
	MaxOpenConns:    100,
	ConnMaxLifetime: time.Hour,
	ConnMaxIdleTime: 30 * time.Minute,
}

// InitDB opens the database, configures the pool, and runs migrations.
// DB_DRIVER selects the backend: "postgres" in deployments, anything else
// (including unset) falls back to an embedded SQLite file for local work.
func InitDB() error {
	var err error
	if config.GetEnv("DB_DRIVER", "sqlite") == "postgres" {
		err = initPostgres()
	} else {
		err = initSQLite()
	}
	if err != nil {
		return err
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		Redis = redis.NewClient(&redis.Options{
			Addr:     host + ":" + config.GetEnv("REDIS_PORT", "6379"),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetIntEnv("REDIS_DB", 0),
		})
	}

	return DB.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.StoreAccount{},
		&models.Claim{},
		&models.Admin{},
		&models.APIKey{},
	)
}

func initPostgres() error {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "bastion") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return err
	}
	return configurePool()
}

func initSQLite() error {
	path := config.GetEnv("DB_PATH", "bastion.db")

	var err error
	DB, err = gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return err
	}
	// SQLite handles a single writer; a bigger pool just causes lock errors.
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func gormConfig() *gorm.Config {
	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold: 200 * time.Millisecond,
				LogLevel:      logLevel,
				Colorful:      !config.IsProduction(),
			},
		),
	}
}

func configurePool() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	return nil
}
