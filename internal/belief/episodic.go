package belief

import (
	"math/rand/v2"
	"time"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"go.uber.org/zap"
)

const (
	// MinWeightedSamples is the smallest pool systematic resampling is run on.
	MinWeightedSamples = 4
	// DefaultGeneratedEpisodes is how many samples are drawn before symmetric doubling.
	DefaultGeneratedEpisodes = 6
	DefaultEpisodicName      = "EpisodicMemory"
	FullEpisodicName         = "Episodic"

	// minStride keeps the resampling stride away from 0 and 1.
	minStride = 2
)

// Source is the randomness used by resampling. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a PCG-backed source. A zero seed is replaced by the clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SystematicResampling draws toGenerate samples with replacement by walking the pool
// from a random start with a random stride in [2, len-1].
func SystematicResampling[T any](rng Source, samples []T, toGenerate int) ([]T, error) {
	size := len(samples)
	if size < minStride+1 {
		return nil, &domain.DataSufficiencyError{Needed: minStride + 1, Found: size}
	}
	if toGenerate < 0 {
		return nil, &domain.ValidationError{Field: "to_generate", Reason: "must not be negative"}
	}

	x := rng.IntN(size)
	stride := minStride + rng.IntN(size-minStride)
	out := make([]T, 0, toGenerate)
	for i := 0; i < toGenerate; i++ {
		out = append(out, samples[x%size])
		x += stride
	}
	return out, nil
}

// EpisodicBuilder consolidates episodes from several networks into a new one.
type EpisodicBuilder struct {
	rng    Source
	logger *zap.Logger
}

func NewEpisodicBuilder(rng Source, logger *zap.Logger) *EpisodicBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EpisodicBuilder{rng: rng, logger: logger}
}

// Resample runs systematic resampling with the builder's source.
func (b *EpisodicBuilder) Resample(samples []domain.Episode, toGenerate int) ([]domain.Episode, error) {
	return SystematicResampling(b.rng, samples, toGenerate)
}

// WeightedSamples pools the importance-sampled copies of every episode of every network.
func (b *EpisodicBuilder) WeightedSamples(networks []*Network, now int) ([]domain.Episode, error) {
	var pool []domain.Episode
	for _, n := range networks {
		for _, e := range n.dataset.episodes {
			copies, err := n.ImportanceSampling(e, now)
			if err != nil {
				return nil, err
			}
			pool = append(pool, copies...)
		}
	}
	return pool, nil
}

// Create builds an episodic memory network: weighted pooling, shuffling, systematic
// resampling of generated samples, re-stamping at now, and symmetric doubling.
func (b *EpisodicBuilder) Create(networks []*Network, now, generated int, name string) (*Network, error) {
	pool, err := b.WeightedSamples(networks, now)
	if err != nil {
		return nil, err
	}
	if len(pool) < MinWeightedSamples {
		return nil, &domain.DataSufficiencyError{Needed: MinWeightedSamples, Found: len(pool)}
	}

	b.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	selected, err := b.Resample(pool, generated)
	if err != nil {
		return nil, err
	}

	dataset := make([]domain.Episode, 0, 2*len(selected))
	for _, e := range selected {
		stamped := e.WithTime(now)
		sym, err := stamped.Symmetric()
		if err != nil {
			return nil, err
		}
		dataset = append(dataset, stamped, sym)
	}

	b.logger.Debug("episodic memory resampled",
		zap.String("network", name),
		zap.Int("sources", len(networks)),
		zap.Int("weighted_samples", len(pool)),
		zap.Int("episodes", len(dataset)))

	return NewNetwork(name, dataset, WithLogger(b.logger))
}

// CreateFull pools every episode of every network, unweighted, re-stamped at now.
func (b *EpisodicBuilder) CreateFull(networks []*Network, now int) (*Network, error) {
	var dataset []domain.Episode
	for _, n := range networks {
		for _, e := range n.dataset.episodes {
			dataset = append(dataset, e.WithTime(now))
		}
	}
	return NewNetwork(FullEpisodicName, dataset, WithLogger(b.logger))
}
