package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"postergo/pkg/db"
	"postergo/pkg/model"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	PosterStore
	CacheStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Posters ---

func (s *SQLiteStore) SavePoster(ctx context.Context, p *model.PosterRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posters (uuid, activity_id, name, activity_type, distance_m, moving_time_s, elevation_gain_m, start_date, svg)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET
			activity_id=excluded.activity_id, name=excluded.name, activity_type=excluded.activity_type,
			distance_m=excluded.distance_m, moving_time_s=excluded.moving_time_s,
			elevation_gain_m=excluded.elevation_gain_m, start_date=excluded.start_date, svg=excluded.svg`,
		p.UUID, p.ActivityID, p.Name, p.ActivityType,
		p.Distance, p.MovingTime, p.ElevationGain, p.StartDate, p.SVG)
	return err
}

func (s *SQLiteStore) GetPoster(ctx context.Context, uuid string) (*model.PosterRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uuid, activity_id, name, activity_type, distance_m, moving_time_s, elevation_gain_m, start_date, svg, created_at
		 FROM posters WHERE uuid = ?`, uuid)

	p, err := scanPoster(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) ListPosters(ctx context.Context, limit int) ([]*model.PosterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, activity_id, name, activity_type, distance_m, moving_time_s, elevation_gain_m, start_date, svg, created_at
		 FROM posters ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posters []*model.PosterRecord
	for rows.Next() {
		p, err := scanPoster(rows)
		if err != nil {
			return nil, err
		}
		posters = append(posters, p)
	}
	return posters, rows.Err()
}

func (s *SQLiteStore) DeletePoster(ctx context.Context, uuid string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM posters WHERE uuid = ?", uuid)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoster(row rowScanner) (*model.PosterRecord, error) {
	var p model.PosterRecord
	err := row.Scan(
		&p.UUID, &p.ActivityID, &p.Name, &p.ActivityType,
		&p.Distance, &p.MovingTime, &p.ElevationGain,
		&p.StartDate, &p.SVG, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Cache ---

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, val []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, created_at=CURRENT_TIMESTAMP`,
		key, val)
	return err
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("state read failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO persistent_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, val)
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
