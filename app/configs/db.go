package configs

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxConnectRetries = 10
	connectRetryDelay = 5 * time.Second
)

// Dialector picks the GORM driver for DB_DRIVER.
func Dialector(env ENV) (gorm.Dialector, error) {
	switch env.DBDriver {
	case "mysql", "":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			env.DBUser, env.DBPassword, env.DBHost, env.DBPort, env.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort, env.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
}

// OpenConnection connects to the configured database, retrying while it comes up.
func OpenConnection(env ENV, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(env)
	if err != nil {
		return nil, err
	}

	gormLevel := gormlogger.Warn
	if env.LogLevel == "debug" {
		gormLevel = gormlogger.Info
	}

	var lastErr error
	for i := 0; i < maxConnectRetries; i++ {
		log.Info("connecting to database",
			zap.String("driver", env.DBDriver),
			zap.String("host", env.DBHost),
			zap.Int("attempt", i+1),
		)

		db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormLevel)})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if dbErr = sqlDB.Ping(); dbErr == nil {
					sqlDB.SetMaxIdleConns(10)
					sqlDB.SetMaxOpenConns(50)
					sqlDB.SetConnMaxLifetime(time.Hour)
					log.Info("database connection established")
					return db, nil
				}
			}
			err = dbErr
		}

		lastErr = err
		log.Warn("database not ready", zap.Error(err), zap.Duration("retry_in", connectRetryDelay))
		time.Sleep(connectRetryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxConnectRetries, lastErr)
}
