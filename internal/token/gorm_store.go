package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthToken stored access token for one client
type AuthToken struct {
	ClientID  string    `gorm:"primaryKey"`
	Token     string    `gorm:"not null"`
	UpdatedAt time.Time
}

// GormStore postgres-backed token store
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore connects to postgres and migrates the token table
func OpenGormStore(cfg config.DatabaseConfig) (*GormStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&AuthToken{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, clientID string) (string, error) {
	var record AuthToken
	err := s.db.WithContext(ctx).First(&record, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if expired(record.Token, time.Now()) {
		return "", nil
	}
	return record.Token, nil
}

func (s *GormStore) Set(ctx context.Context, clientID, token string) error {
	record := AuthToken{ClientID: clientID, Token: token, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context, clientID string) error {
	err := s.db.WithContext(ctx).Delete(&AuthToken{}, "client_id = ?", clientID).Error
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
