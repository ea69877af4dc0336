package pairing

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChunkModel is one embedded passage persisted in the index database.
type ChunkModel struct {
	ID        uint      `gorm:"primaryKey"`
	Source    string    `gorm:"index;not null"`
	Position  int       `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	Vector    []float64 `gorm:"serializer:json;not null"`
	CreatedAt time.Time
}

func (ChunkModel) TableName() string {
	return "pairing_chunks"
}

// Store persists the pairing index in SQLite.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the index database at path. An empty path
// opens an in-memory database.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open pairing index: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&ChunkModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate pairing index: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&ChunkModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// All returns every stored chunk in insertion order.
func (s *Store) All(ctx context.Context) ([]ChunkModel, error) {
	var chunks []ChunkModel
	if err := s.db.WithContext(ctx).Order("id").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	return chunks, nil
}

// Replace swaps the stored chunks for the given ones in a single transaction.
func (s *Store) Replace(ctx context.Context, chunks []ChunkModel) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ChunkModel{}).Error; err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
