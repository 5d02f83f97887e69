package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/moldworks/moldtrack/internal/model"
)

// SQLiteStore implements the Store interface on a local SQLite
// database with a single key-value records table.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// put serializes v as JSON and upserts it under key.
func (s *SQLiteStore) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling record %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing record %q: %w", key, err)
	}

	return nil
}

// get reads the raw value stored under key. Returns ErrNotFound when
// the key is absent.
func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM records WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading record %q: %w", key, err)
	}
	return value, nil
}

// getJSON reads and decodes the value stored under key into dst.
func (s *SQLiteStore) getJSON(ctx context.Context, key string, dst interface{}) error {
	value, err := s.get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decoding record %q: %w", key, err)
	}
	return nil
}

// delete removes the record stored under key. Deleting an absent key
// is not an error.
func (s *SQLiteStore) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting record %q: %w", key, err)
	}
	return nil
}

// SaveTasks writes the full task collection.
func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return s.put(ctx, KeyTasks, tasks)
}

// LoadTasks reads the full task collection.
func (s *SQLiteStore) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.getJSON(ctx, KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveMembers writes the full member collection.
func (s *SQLiteStore) SaveMembers(ctx context.Context, members []model.Member) error {
	return s.put(ctx, KeyMembers, members)
}

// LoadMembers reads the full member collection.
func (s *SQLiteStore) LoadMembers(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := s.getJSON(ctx, KeyMembers, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// SaveSenderEmail writes the system sender address.
func (s *SQLiteStore) SaveSenderEmail(ctx context.Context, addr string) error {
	return s.put(ctx, KeySenderEmail, addr)
}

// LoadSenderEmail reads the system sender address.
func (s *SQLiteStore) LoadSenderEmail(ctx context.Context) (string, error) {
	var addr string
	if err := s.getJSON(ctx, KeySenderEmail, &addr); err != nil {
		return "", err
	}
	return addr, nil
}

// SaveSession writes the current session record.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess model.Session) error {
	return s.put(ctx, KeySession, sess)
}

// LoadSession reads the persisted session, if any.
func (s *SQLiteStore) LoadSession(ctx context.Context) (*model.Session, error) {
	var sess model.Session
	if err := s.getJSON(ctx, KeySession, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteSession removes the session record entirely.
func (s *SQLiteStore) DeleteSession(ctx context.Context) error {
	return s.delete(ctx, KeySession)
}
