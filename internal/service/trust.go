package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Harshitk-cp/trustmind/internal/belief"
	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/Harshitk-cp/trustmind/internal/store"
	"go.uber.org/zap"
)

var (
	ErrInformantNotFound = errors.New("informant not found")
	ErrNoInformants      = errors.New("no known informants")
	ErrNoTrials          = errors.New("at least one trial is required")
)

// TrustOptions tune the experiment behaviour.
type TrustOptions struct {
	MatureToM        bool
	UpdateOnDecision bool
	EpisodicSamples  int
}

func DefaultTrustOptions() TrustOptions {
	return TrustOptions{
		MatureToM:        true,
		UpdateOnDecision: true,
		EpisodicSamples:  belief.DefaultGeneratedEpisodes,
	}
}

// InformantView is a read-only snapshot of one informant's network.
type InformantView struct {
	Index      int                `json:"index" yaml:"index"`
	Name       string             `json:"name" yaml:"name"`
	Episodes   int                `json:"episodes" yaml:"episodes"`
	PDF        map[string]float64 `json:"pdf" yaml:"pdf"`
	Entropy    float64            `json:"entropy" yaml:"entropy"`
	Parameters belief.CPT         `json:"parameters" yaml:"parameters"`
}

// OutcomeInput reports what happened after a decision.
type OutcomeInput struct {
	Informant int
	Hint      domain.Side
	Choice    domain.Side
	Found     bool
}

type OutcomeResult struct {
	Verdict Verdict         `json:"verdict"`
	Episode *domain.Episode `json:"episode,omitempty"`
	Updated bool            `json:"updated"`
}

// TrustService owns the belief networks of every known informant and the logical clock.
// Informants are addressed by the index assigned when they were first met.
type TrustService struct {
	datasets domain.DatasetStore
	clock    domain.ClockStore
	profiles domain.ProfileStore
	builder  *belief.EpisodicBuilder
	opts     TrustOptions
	logger   *zap.Logger

	mu       sync.Mutex
	networks []*belief.Network
	now      int
}

func NewTrustService(
	ds domain.DatasetStore,
	cs domain.ClockStore,
	ps domain.ProfileStore,
	builder *belief.EpisodicBuilder,
	opts TrustOptions,
	logger *zap.Logger,
) *TrustService {
	if opts.EpisodicSamples <= 0 {
		opts.EpisodicSamples = belief.DefaultGeneratedEpisodes
	}
	return &TrustService{
		datasets: ds,
		clock:    cs,
		profiles: ps,
		builder:  builder,
		opts:     opts,
		logger:   logger,
	}
}

func informantName(i int) string {
	return fmt.Sprintf("Informer%d", i)
}

func episodicName(i int) string {
	return fmt.Sprintf("Informer%d_episodic", i)
}

// Load restores the clock and every persisted informant network, replacing the current state.
func (s *TrustService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now, err := s.clock.Load(ctx)
	if err != nil {
		return fmt.Errorf("load clock: %w", err)
	}

	var networks []*belief.Network
	for i := 0; ; i++ {
		n, err := s.loadInformant(ctx, i)
		if err != nil {
			return err
		}
		if n == nil {
			break
		}
		networks = append(networks, n)
	}

	if latest := latestEpisodeTime(networks); latest >= now {
		s.logger.Warn("stored clock is behind the datasets, moving it forward",
			zap.Int("stored", now),
			zap.Int("latest_episode", latest))
		now = latest + 1
	}

	s.now = now
	s.networks = networks
	s.logger.Info("beliefs loaded", zap.Int("informants", len(networks)), zap.Int("time", now))
	return nil
}

// latestEpisodeTime returns -1 when there are no episodes.
func latestEpisodeTime(networks []*belief.Network) int {
	latest := -1
	for _, n := range networks {
		for _, e := range n.Episodes() {
			latest = max(latest, e.Time())
		}
	}
	return latest
}

func (s *TrustService) loadInformant(ctx context.Context, i int) (*belief.Network, error) {
	for _, name := range []string{informantName(i), episodicName(i)} {
		episodes, err := s.datasets.Load(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		return belief.NewNetwork(name, episodes, belief.WithLogger(s.logger))
	}
	return nil, nil
}

// Now returns the current logical time without advancing it.
func (s *TrustService) Now() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Tick returns the current time and persists its increment.
func (s *TrustService) Tick(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick(ctx)
}

func (s *TrustService) tick(ctx context.Context) (int, error) {
	previous := s.now
	if err := s.clock.Save(ctx, previous+1); err != nil {
		return 0, fmt.Errorf("advance clock: %w", err)
	}
	s.now = previous + 1
	return previous, nil
}

func (s *TrustService) ResetClock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clock.Save(ctx, 0); err != nil {
		return fmt.Errorf("reset clock: %w", err)
	}
	s.now = 0
	return nil
}

// Familiarize builds the network of a new informant from demonstration trials
// and returns its index.
func (s *TrustService) Familiarize(ctx context.Context, trials []Trial) (int, error) {
	if len(trials) == 0 {
		return 0, ErrNoTrials
	}
	if len(trials)%2 != 0 {
		s.logger.Warn("odd number of demonstrations makes the experiment non-standard", zap.Int("trials", len(trials)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	labels := make([]domain.Label, len(trials))
	for i, tr := range trials {
		l, err := EncodeDemonstration(tr.Hint, tr.Found, s.opts.MatureToM)
		if err != nil {
			return 0, fmt.Errorf("trial %d: %w", i, err)
		}
		labels[i] = l
	}

	episodes := make([]domain.Episode, len(labels))
	for i, l := range labels {
		t, err := s.tick(ctx)
		if err != nil {
			return 0, err
		}
		if episodes[i], err = domain.EpisodeOf(l, t); err != nil {
			return 0, err
		}
	}

	index := len(s.networks)
	n, err := belief.NewNetwork(informantName(index), episodes, belief.WithLogger(s.logger))
	if err != nil {
		return 0, err
	}
	s.networks = append(s.networks, n)

	s.logger.Info("informant familiarized",
		zap.Int("informant", index),
		zap.Int("trials", len(trials)),
		zap.Float64("entropy", n.Entropy()))
	return index, nil
}

func (s *TrustService) network(i int) (*belief.Network, error) {
	if i < 0 || i >= len(s.networks) {
		return nil, ErrInformantNotFound
	}
	return s.networks[i], nil
}

// Decide picks where to look given the informant's hint.
func (s *TrustService) Decide(ctx context.Context, informant int, hint domain.Side) (belief.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(informant)
	if err != nil {
		return belief.Decision{}, err
	}
	d, err := n.DecisionMaking(hint)
	if err != nil {
		return belief.Decision{}, err
	}
	s.logger.Debug("decision made",
		zap.Int("informant", informant),
		zap.String("hint", string(hint)),
		zap.String("choice", string(d.Action)),
		zap.Float64("p_a", d.Posterior.A))
	return d, nil
}

// RecordOutcome classifies a decision and, when enabled, learns from it:
// the observed episode and its symmetric counterpart share one time stamp.
func (s *TrustService) RecordOutcome(ctx context.Context, in OutcomeInput) (*OutcomeResult, error) {
	if !in.Hint.Valid() {
		return nil, &domain.ValidationError{Field: "hint", Reason: "expected A or B"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(in.Informant)
	if err != nil {
		return nil, err
	}
	label, err := EncodeOutcome(in.Choice, in.Found, s.opts.MatureToM)
	if err != nil {
		return nil, err
	}

	result := &OutcomeResult{Verdict: VerdictOf(in.Hint, in.Choice, in.Found, s.opts.MatureToM)}
	if !s.opts.UpdateOnDecision {
		return result, nil
	}

	t, err := s.tick(ctx)
	if err != nil {
		return nil, err
	}
	e, err := domain.EpisodeOf(label, t)
	if err != nil {
		return nil, err
	}
	sym, err := e.Symmetric()
	if err != nil {
		return nil, err
	}
	if err := n.UpdateBelief(e); err != nil {
		return nil, err
	}
	if err := n.UpdateBelief(sym); err != nil {
		return nil, err
	}

	result.Episode = &e
	result.Updated = true
	s.logger.Info("belief updated",
		zap.Int("informant", in.Informant),
		zap.String("verdict", string(result.Verdict)),
		zap.String("label", label.String()),
		zap.Float64("entropy", n.Entropy()))
	return result, nil
}

// Estimate predicts the informant's belief and pointing given where the sticker really is.
func (s *TrustService) Estimate(ctx context.Context, informant int, sticker domain.Side) (belief.Estimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(informant)
	if err != nil {
		return belief.Estimate{}, err
	}
	return n.BeliefEstimation(sticker)
}

// RegisterUnknown gives a never-seen informant an episodic memory consolidated
// from every known network, and returns the new index.
func (s *TrustService) RegisterUnknown(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.networks) == 0 {
		return 0, ErrNoInformants
	}

	// the clock only advances once the memory exists
	index := len(s.networks)
	n, err := s.builder.Create(s.networks, s.now, s.opts.EpisodicSamples, episodicName(index))
	if err != nil {
		return 0, fmt.Errorf("create episodic memory: %w", err)
	}
	if _, err := s.tick(ctx); err != nil {
		return 0, err
	}
	s.networks = append(s.networks, n)

	s.logger.Info("episodic memory created",
		zap.Int("informant", index),
		zap.Int("sources", index),
		zap.Int("episodes", n.Len()),
		zap.Float64("entropy", n.Entropy()))
	return index, nil
}

// ConsolidateFull pools every known episode into one network without weighting.
// The result is returned but not registered as an informant.
func (s *TrustService) ConsolidateFull(ctx context.Context) (InformantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.networks) == 0 {
		return InformantView{}, ErrNoInformants
	}
	n, err := s.builder.CreateFull(s.networks, s.now)
	if err != nil {
		return InformantView{}, err
	}
	if _, err := s.tick(ctx); err != nil {
		return InformantView{}, err
	}
	return viewOf(-1, n), nil
}

func viewOf(i int, n *belief.Network) InformantView {
	pdf := make(map[string]float64, len(domain.Labels))
	for l, p := range n.PDF() {
		pdf[l.String()] = p
	}
	return InformantView{
		Index:      i,
		Name:       n.Name(),
		Episodes:   n.Len(),
		PDF:        pdf,
		Entropy:    n.Entropy(),
		Parameters: n.Parameters(),
	}
}

func (s *TrustService) Informant(i int) (InformantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(i)
	if err != nil {
		return InformantView{}, err
	}
	return viewOf(i, n), nil
}

func (s *TrustService) Informants() []InformantView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]InformantView, len(s.networks))
	for i, n := range s.networks {
		views[i] = viewOf(i, n)
	}
	return views
}

// Episodes returns a copy of the dataset of informant i.
func (s *TrustService) Episodes(i int) ([]domain.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(i)
	if err != nil {
		return nil, err
	}
	return n.Episodes(), nil
}

// Save persists every dataset and refreshes every profile.
func (s *TrustService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.networks {
		if err := s.datasets.Save(ctx, n.Name(), n.Episodes()); err != nil {
			return fmt.Errorf("save %s: %w", n.Name(), err)
		}
	}
	if err := s.syncProfiles(ctx); err != nil {
		return err
	}
	s.logger.Info("beliefs saved", zap.Int("informants", len(s.networks)))
	return nil
}

func profileOf(n *belief.Network) *domain.InformantProfile {
	vec := n.PDFVector()
	pdf := make([]float32, len(vec))
	for i, p := range vec {
		pdf[i] = float32(p)
	}
	return &domain.InformantProfile{
		Name:     n.Name(),
		PDF:      pdf,
		Entropy:  n.Entropy(),
		Episodes: n.Len(),
	}
}

func (s *TrustService) syncProfiles(ctx context.Context) error {
	for _, n := range s.networks {
		if err := s.profiles.Upsert(ctx, profileOf(n)); err != nil {
			return fmt.Errorf("upsert profile %s: %w", n.Name(), err)
		}
	}
	return nil
}

// SimilarInformants returns the k stored profiles whose label distribution is
// closest to that of informant i.
func (s *TrustService) SimilarInformants(ctx context.Context, i, k int) ([]domain.ProfileWithDistance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.network(i)
	if err != nil {
		return nil, err
	}
	if err := s.syncProfiles(ctx); err != nil {
		return nil, err
	}
	return s.profiles.Nearest(ctx, profileOf(n).PDF, n.Name(), k)
}
