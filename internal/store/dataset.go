package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatasetStore keeps network datasets in Postgres, one row per episode ordered by seq.
type DatasetStore struct {
	db *pgxpool.Pool
}

func NewDatasetStore(db *pgxpool.Pool) *DatasetStore {
	return &DatasetStore{db: db}
}

var episodeColumns = []string{
	"network", "seq", "robot_belief", "robot_action", "informant_belief", "informant_action", "time",
}

// Save replaces the stored dataset of name with episodes.
func (s *DatasetStore) Save(ctx context.Context, name string, episodes []domain.Episode) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO networks (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET updated_at = NOW()`,
			name,
		); err != nil {
			return fmt.Errorf("upsert network: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM episodes WHERE network = $1`, name); err != nil {
			return fmt.Errorf("clear episodes: %w", err)
		}

		_, err := tx.CopyFrom(ctx, pgx.Identifier{"episodes"}, episodeColumns,
			pgx.CopyFromSlice(len(episodes), func(i int) ([]any, error) {
				raw := episodes[i].RawData()
				return []any{name, i, raw[0], raw[1], raw[2], raw[3], episodes[i].Time()}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy episodes: %w", err)
		}
		return nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "save", Path: name, Err: err}
	}
	return nil
}

// Load returns the dataset of name in insertion order, or ErrNotFound.
func (s *DatasetStore) Load(ctx context.Context, name string) ([]domain.Episode, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(ctx,
		`SELECT robot_belief, robot_action, informant_belief, informant_action, time
		 FROM episodes WHERE network = $1
		 ORDER BY seq`,
		name,
	)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: name, Err: err}
	}
	defer rows.Close()

	var episodes []domain.Episode
	for rows.Next() {
		var raw domain.RawData
		var t int
		if err := rows.Scan(&raw[0], &raw[1], &raw[2], &raw[3], &t); err != nil {
			return nil, &domain.PersistenceError{Op: "scan", Path: name, Err: err}
		}
		e, err := domain.NewEpisode(raw, t)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "decode", Path: name, Err: err}
		}
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "load", Path: name, Err: err}
	}
	return episodes, nil
}

func (s *DatasetStore) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRow(ctx, `SELECT 1 FROM networks WHERE name = $1`, name).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, &domain.PersistenceError{Op: "exists", Path: name, Err: err}
	}
	return true, nil
}
