package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClockStore keeps the logical time counter in a single-row table.
type ClockStore struct {
	db *pgxpool.Pool
}

func NewClockStore(db *pgxpool.Pool) *ClockStore {
	return &ClockStore{db: db}
}

// Load returns the stored time, or 0 when the counter was never saved.
func (s *ClockStore) Load(ctx context.Context) (int, error) {
	var t int
	err := s.db.QueryRow(ctx, `SELECT value FROM clock WHERE id = 1`).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, &domain.PersistenceError{Op: "load", Path: "clock", Err: err}
	}
	return t, nil
}

func (s *ClockStore) Save(ctx context.Context, t int) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO clock (id, value) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		t,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "save", Path: "clock", Err: err}
	}
	return nil
}
