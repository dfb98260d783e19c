package history

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore keeps readings in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to dsn and migrates the readings table.
func OpenGorm(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open connection and migrates the readings table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Reading{}); err != nil {
		return nil, fmt.Errorf("migrate readings: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Insert stores readings in one batch.
func (s *GormStore) Insert(readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}
	if err := s.db.Create(&readings).Error; err != nil {
		return fmt.Errorf("insert readings: %w", err)
	}
	return nil
}

// Between returns readings of kind in [start, end], oldest first.
func (s *GormStore) Between(kind Kind, start, end time.Time) ([]Reading, error) {
	var out []Reading
	err := s.db.
		Where("kind = ? AND recorded_at >= ? AND recorded_at <= ?", kind, start.UTC(), end.UTC()).
		Order("recorded_at asc, sensor_id asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query %s readings: %w", kind, err)
	}
	return out, nil
}

// DeleteBefore removes readings older than t.
func (s *GormStore) DeleteBefore(t time.Time) (int64, error) {
	res := s.db.Where("recorded_at < ?", t.UTC()).Delete(&Reading{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete readings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
