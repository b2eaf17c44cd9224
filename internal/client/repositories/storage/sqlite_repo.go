package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/nyayguru/internal/common"
	"github.com/dmitrijs2005/nyayguru/internal/dbx"
)

type SQLiteRepository struct {
	db     *sql.DB
	origin string
	pub    Publisher
}

// NewSQLiteRepository binds the store to db. origin identifies the writing
// context in change notifications; pub may be nil.
func NewSQLiteRepository(db *sql.DB, origin string, pub Publisher) *SQLiteRepository {
	return &SQLiteRepository{db: db, origin: origin, pub: pub}
}

func (r *SQLiteRepository) Origin() string {
	return r.origin
}

// Get returns (nil, nil) when the key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get storage[%s]: %w", key, err)
	}
	return value, nil
}

// GetMany reads keys with a single statement, so the result is a consistent
// snapshot. Absent keys are missing from the map.
func (r *SQLiteRepository) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `SELECT key, value FROM storage WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage%v: %w", keys, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan storage row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate storage rows: %w", err)
	}
	return result, nil
}

// SetMany upserts all values in one transaction.
func (r *SQLiteRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	keys := sortedKeys(values)

	var revision int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, k, values[k])
			if err != nil {
				return fmt.Errorf("failed to set storage[%s]: %w", k, err)
			}
		}
		var err error
		revision, err = r.bump(ctx, tx, keys)
		return err
	})
	if err != nil {
		return err
	}

	r.publish(keys, revision)
	return nil
}

// DeleteMany removes keys in one transaction. Deleting absent keys is not an
// error but still counts as a change.
func (r *SQLiteRepository) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	keys = append([]string(nil), keys...)
	sort.Strings(keys)

	var revision int64
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM storage WHERE key = ?`, k); err != nil {
				return fmt.Errorf("failed to delete storage[%s]: %w", k, err)
			}
		}
		var err error
		revision, err = r.bump(ctx, tx, keys)
		return err
	})
	if err != nil {
		return err
	}

	r.publish(keys, revision)
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM storage`)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan storage row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate storage rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	all, err := r.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.DeleteMany(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

// Token returns the persisted bearer token, or "" when there is none.
func (r *SQLiteRepository) Token(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, common.StorageKeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r *SQLiteRepository) bump(ctx context.Context, tx dbx.DBTX, keys []string) (int64, error) {
	var revision int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO storage_changes (id, revision, origin, keys) VALUES (1, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			revision = storage_changes.revision + 1,
			origin   = excluded.origin,
			keys     = excluded.keys
		RETURNING revision
	`, r.origin, strings.Join(keys, ",")).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("failed to record storage change: %w", err)
	}
	return revision, nil
}

func (r *SQLiteRepository) publish(keys []string, revision int64) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(Change{Keys: keys, Origin: r.origin, Revision: revision})
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
