package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// Database backs the Store with a single relational table through GORM.
type Database struct {
	conn *gorm.DB
}

func NewDatabase(conn *gorm.DB) (*Database, error) {
	if conn == nil {
		return nil, errors.New("gorm connection is required")
	}
	if err := conn.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Database{conn: conn}, nil
}

func (d *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := d.conn.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (d *Database) Set(ctx context.Context, key string, value []byte) error {
	return upsert(d.conn.WithContext(ctx), key, value)
}

func (d *Database) Delete(ctx context.Context, key string) error {
	return d.conn.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
}

// Apply commits the batch inside one transaction.
func (d *Database) Apply(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	return d.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if op.Delete {
				if err := tx.Delete(&Entry{}, "key = ?", op.Key).Error; err != nil {
					return err
				}
				continue
			}
			if err := upsert(tx, op.Key, op.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, key string, value []byte) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
