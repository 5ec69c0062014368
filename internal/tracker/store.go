package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sweeparr/internal/config"
)

// Store manages tracking-record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the tracking database. Opening is
// idempotent: a missing database gets the schema created, an existing
// one is used as-is.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const itemColumns = "id, added_at, progress, last_seen, last_progress"

// GetByID fetches a tracking record by download id. Absent records
// return (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM tracked_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tracked item: %w", err)
	}
	return item, nil
}

// Insert stores a new tracking record.
func (s *Store) Insert(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	if item.ID == "" {
		return errors.New("item id required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracked_items (id, added_at, progress, last_seen, last_progress)
         VALUES (?, ?, ?, ?, ?)`,
		item.ID,
		item.AddedAt.Unix(),
		item.Progress,
		item.LastSeen.Unix(),
		item.LastProgress.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert tracked item: %w", err)
	}
	return nil
}

// UpdateProgress records a progress change: progress, last_progress, and
// last_seen all move to the current pass.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int64, now time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tracked_items SET progress = ?, last_progress = ?, last_seen = ? WHERE id = ?`,
		progress,
		now.Unix(),
		now.Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// Touch records a sighting without progress: only last_seen advances.
func (s *Store) Touch(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE tracked_items SET last_seen = ? WHERE id = ?`,
		now.Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("touch tracked item: %w", err)
	}
	return nil
}

// Remove deletes a tracking record by id.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracked_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete tracked item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns all tracking records ordered by first observation.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM tracked_items ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tracked items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           string
		addedAt      int64
		progress     int64
		lastSeen     int64
		lastProgress int64
	)
	if err := scanner.Scan(&id, &addedAt, &progress, &lastSeen, &lastProgress); err != nil {
		return nil, err
	}
	return &Item{
		ID:           id,
		AddedAt:      time.Unix(addedAt, 0).UTC(),
		Progress:     progress,
		LastSeen:     time.Unix(lastSeen, 0).UTC(),
		LastProgress: time.Unix(lastProgress, 0).UTC(),
	}, nil
}
