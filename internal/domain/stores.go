package domain

import "context"

// DatasetStore persists the ordered episode table backing a named network.
type DatasetStore interface {
	Save(ctx context.Context, name string, episodes []Episode) error
	Load(ctx context.Context, name string) ([]Episode, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// ClockStore persists the externally maintained logical time counter.
type ClockStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, t int) error
}

// ProfileStore keeps the label distribution of each informant for similarity lookups.
type ProfileStore interface {
	Upsert(ctx context.Context, p *InformantProfile) error
	Nearest(ctx context.Context, pdf []float32, excludeName string, limit int) ([]ProfileWithDistance, error)
}
