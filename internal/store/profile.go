package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// ProfileStore keeps informant label distributions in a pgvector column.
type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Upsert(ctx context.Context, p *domain.InformantProfile) error {
	vec := pgvector.NewVector(p.PDF)
	err := s.db.QueryRow(ctx,
		`INSERT INTO informant_profiles (name, pdf, entropy, episodes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET pdf = EXCLUDED.pdf, entropy = EXCLUDED.entropy, episodes = EXCLUDED.episodes, updated_at = NOW()
		 RETURNING id, updated_at`,
		p.Name, vec, p.Entropy, p.Episodes,
	).Scan(&p.ID, &p.UpdatedAt)
	if err != nil {
		return &domain.PersistenceError{Op: "upsert profile", Path: p.Name, Err: err}
	}
	return nil
}

// Nearest returns up to limit profiles ordered by L2 distance to pdf, skipping excludeName.
func (s *ProfileStore) Nearest(ctx context.Context, pdf []float32, excludeName string, limit int) ([]domain.ProfileWithDistance, error) {
	vec := pgvector.NewVector(pdf)

	rows, err := s.db.Query(ctx,
		`SELECT id, name, pdf, entropy, episodes, updated_at, pdf <-> $1 AS distance
		 FROM informant_profiles
		 WHERE name <> $2
		 ORDER BY pdf <-> $1
		 LIMIT $3`,
		vec, excludeName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("nearest profiles query: %w", err)
	}
	defer rows.Close()

	var results []domain.ProfileWithDistance
	for rows.Next() {
		var p domain.ProfileWithDistance
		var v pgvector.Vector
		if err := rows.Scan(&p.ID, &p.Name, &v, &p.Entropy, &p.Episodes, &p.UpdatedAt, &p.Distance); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		p.PDF = v.Slice()
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearest profiles rows: %w", err)
	}
	return results, nil
}

// MemoryProfileStore is the in-process ProfileStore used with the file backend.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.InformantProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domain.InformantProfile)}
}

func (s *MemoryProfileStore) Upsert(ctx context.Context, p *domain.InformantProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[p.Name]; ok {
		p.ID = existing.ID
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.UpdatedAt = time.Now()

	stored := *p
	stored.PDF = append([]float32(nil), p.PDF...)
	s.profiles[p.Name] = stored
	return nil
}

func (s *MemoryProfileStore) Nearest(ctx context.Context, pdf []float32, excludeName string, limit int) ([]domain.ProfileWithDistance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.ProfileWithDistance, 0, len(s.profiles))
	for name, p := range s.profiles {
		if name == excludeName {
			continue
		}
		results = append(results, domain.ProfileWithDistance{InformantProfile: p, Distance: l2(pdf, p.PDF)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Name < results[j].Name
		}
		return results[i].Distance < results[j].Distance
	})
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
