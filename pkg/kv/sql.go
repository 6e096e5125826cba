package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thedivyam/noon-sde3/pkg/db"
)

// Entry is a row of the kv_entries table.
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Entry) TableName() string { return "kv_entries" }

// SQLStore persists entries through gorm on sqlite or postgres.
type SQLStore struct {
	client *db.Client
	now    func() time.Time
}

func NewSQLStore(client *db.Client) *SQLStore {
	return &SQLStore{client: client, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.client.DB().WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", wrap("get", key, err)
	}
	return entry.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	err := s.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
		}).
		Create(&entry).Error
	return wrap("set", key, err)
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	err := s.client.DB().WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
	return wrap("delete", key, err)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return wrap("ping", "", s.client.Ping(ctx))
}

func (s *SQLStore) Close() error {
	return wrap("close", "", s.client.Close())
}
