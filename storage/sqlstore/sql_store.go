// Package sqlstore keeps session keys in a relational table through gorm, either in a local
// SQLite file or in a shared Postgres database.
package sqlstore

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jrsteele09/hrdash/storage"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ storage.Repo = (*Store)(nil)

const defaultTimeout = 5 * time.Second

// Entry is one row of the key-value table
type Entry struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}

type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// New wraps an open gorm connection and migrates the key-value table
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("[sqlstore.New] db is required")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "[sqlstore.New] migrate")
	}
	return &Store{db: db, timeout: defaultTimeout}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "[sqlstore.OpenSQLite] open")
	}
	return New(db)
}

// OpenPostgres connects to dsn and verifies the connection
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("[sqlstore.OpenPostgres] dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "[sqlstore.OpenPostgres] open")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "[sqlstore.OpenPostgres] sql.DB")
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "[sqlstore.OpenPostgres] ping")
	}
	return New(db)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var e Entry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "[sqlstore.Get] %s", key)
	}
	return e.Value, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	e := Entry{Name: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	return errors.Wrapf(err, "[sqlstore.Set] %s", key)
}

func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&Entry{}).Error
	return errors.Wrapf(err, "[sqlstore.Delete] %s", key)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
