package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEpisodes(t *testing.T) []domain.Episode {
	t.Helper()
	var out []domain.Episode
	for i, l := range []domain.Label{domain.LabelTruthA, domain.LabelLieA, domain.LabelTruthB, domain.LabelLieB} {
		e, err := domain.EpisodeOf(l, i*2)
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestFileDatasetStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileDatasetStore(filepath.Join(t.TempDir(), "datasets"))

	ok, err := s.Exists(ctx, "Informer0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Load(ctx, "Informer0")
	assert.ErrorIs(t, err, ErrNotFound)

	episodes := testEpisodes(t)
	require.NoError(t, s.Save(ctx, "Informer0", episodes))

	ok, err = s.Exists(ctx, "Informer0")
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := s.Load(ctx, "Informer0")
	require.NoError(t, err)
	assert.Equal(t, episodes, loaded)

	require.NoError(t, s.Save(ctx, "Informer1_episodic", episodes[:1]))
	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"Informer0", "Informer1_episodic"}, names)
}

func TestFileDatasetStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewFileDatasetStore(t.TempDir())
	episodes := testEpisodes(t)

	require.NoError(t, s.Save(ctx, "Informer0", episodes))
	require.NoError(t, s.Save(ctx, "Informer0", episodes[:2]))

	loaded, err := s.Load(ctx, "Informer0")
	require.NoError(t, err)
	assert.Equal(t, episodes[:2], loaded)
}

func TestFileDatasetStore_MalformedTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Informer0.csv"), []byte("1,1,1\n"), 0o644))

	_, err := NewFileDatasetStore(dir).Load(context.Background(), "Informer0")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileClockStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "current_time.csv")
	s := NewFileClockStore(path)

	now, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, now)

	require.NoError(t, s.Save(ctx, 17))
	now, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, now)

	require.NoError(t, os.WriteFile(path, []byte("seventeen"), 0o644))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestFileStores_WriteFailures(t *testing.T) {
	ctx := context.Background()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewFileDatasetStore(filepath.Join(blocker, "datasets")).Save(ctx, "Informer0", testEpisodes(t))
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = NewFileClockStore(filepath.Join(blocker, "current_time.csv")).Save(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	// the parent exists but the target is a directory
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "current_time.csv"), 0o755))
	err = NewFileClockStore(filepath.Join(dir, "current_time.csv")).Save(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestMemoryProfileStore_Nearest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()

	profiles := []*domain.InformantProfile{
		{Name: "Informer0", PDF: []float32{0.7, 0.1, 0.1, 0.1}},
		{Name: "Informer1", PDF: []float32{0.1, 0.1, 0.4, 0.4}},
		{Name: "Informer2", PDF: []float32{0.6, 0.2, 0.1, 0.1}},
	}
	for _, p := range profiles {
		require.NoError(t, s.Upsert(ctx, p))
		assert.NotEmpty(t, p.ID)
	}

	results, err := s.Nearest(ctx, profiles[0].PDF, "Informer0", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Informer2", results[0].Name)
	assert.Equal(t, "Informer1", results[1].Name)
	assert.Less(t, results[0].Distance, results[1].Distance)

	results, err = s.Nearest(ctx, profiles[0].PDF, "", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Informer0", results[0].Name)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
}

func TestMemoryProfileStore_UpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfileStore()

	p := &domain.InformantProfile{Name: "Informer0", PDF: []float32{0.25, 0.25, 0.25, 0.25}}
	require.NoError(t, s.Upsert(ctx, p))
	id := p.ID

	again := &domain.InformantProfile{Name: "Informer0", PDF: []float32{0.4, 0.2, 0.2, 0.2}, Episodes: 1}
	require.NoError(t, s.Upsert(ctx, again))
	assert.Equal(t, id, again.ID)

	results, err := s.Nearest(ctx, again.PDF, "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Episodes)
}
