package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BrowserSession is one browser slot in the database backend.
type BrowserSession struct {
	ID        string `gorm:"primaryKey;size:64"`
	Token     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BrowserSession) TableName() string {
	return "browser_sessions"
}

// GormKV stores browser slots in a SQL table through gorm.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

// Migrate creates or updates the browser_sessions table.
func (k *GormKV) Migrate() error {
	if err := k.db.AutoMigrate(&BrowserSession{}); err != nil {
		return fmt.Errorf("migrate browser_sessions: %w", err)
	}
	return nil
}

func (k *GormKV) Get(ctx context.Context, key string) (string, error) {
	var row BrowserSession
	if err := k.db.WithContext(ctx).Where("id = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Token, nil
}

func (k *GormKV) Set(ctx context.Context, key, value string) error {
	row := BrowserSession{ID: key, Token: value}
	return k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&row).Error
}

func (k *GormKV) Delete(ctx context.Context, key string) error {
	return k.db.WithContext(ctx).Where("id = ?", key).Delete(&BrowserSession{}).Error
}
