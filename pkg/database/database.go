package database

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Config holds the PostgreSQL connection settings
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// ConfigFromEnv reads the connection settings from POSTGRES_* variables
func ConfigFromEnv() Config {
	cfg := Config{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: os.Getenv("POSTGRES_DATABASE"),
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	return cfg
}

// DSN returns the connection string for the postgres driver
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Database, c.Port,
	)
}

// Store gives access to the books table
type Store struct {
	db    *gorm.DB
	stats statsCache
}

// Open connects to PostgreSQL and migrates the schema
func Open(cfg Config) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.New(
			log.Default(),
			logger.Config{
				SlowThreshold:             10 * time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "catalog_",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("Database connection established", "host", cfg.Host, "database", cfg.Database)

	store := New(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// New wraps an existing GORM handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate runs automatic migration for all models
func (s *Store) AutoMigrate() error {
	slog.Info("Running auto migration")

	if err := s.db.AutoMigrate(&Book{}, &Favorite{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	slog.Info("Auto migration completed successfully")
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// sanitizeString removes null bytes which PostgreSQL rejects in text fields
func sanitizeString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeString(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
