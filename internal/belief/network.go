package belief

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"go.uber.org/zap"
)

// Importance sampling constants.
const (
	// entropyNormalization keeps entropy differences in [0, 1] for four classes.
	entropyNormalization = 2.0
	// timeMitigation halves the age penalty applied to older episodes.
	timeMitigation = 2.0

	// Weight thresholds mapping an importance weight to 0..3 copies.
	DuplicateOnceThreshold   = 0.02
	DuplicateTwiceThreshold  = 0.2
	DuplicateThriceThreshold = 0.5
)

// Decision is the outcome of a decision-making query.
type Decision struct {
	Action    domain.Side `json:"action"`
	Posterior Posterior   `json:"posterior"`
}

// Estimate is the predicted mental state of the informant.
type Estimate struct {
	InformantBelief domain.Side `json:"informant_belief"`
	InformantAction domain.Side `json:"informant_action"`
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// Network is the belief state for one informant, or a consolidated episodic memory.
// It is not safe for concurrent use.
type Network struct {
	name      string
	dataset   *DatasetParser
	params    CPT
	evaluator *Evaluator
	pdf       [len(domain.Labels)]float64
	entropy   float64
	logger    *zap.Logger
}

// NewNetwork estimates a network from an episode dataset. An empty dataset yields the prior.
func NewNetwork(name string, episodes []domain.Episode, opts ...Option) (*Network, error) {
	dataset, err := NewDatasetParser(episodes)
	if err != nil {
		return nil, err
	}
	n := &Network{name: name, dataset: dataset, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	n.rebuild()
	return n, nil
}

// LoadNetwork builds a network from a persisted episode table.
func LoadNetwork(name, path string, opts ...Option) (*Network, error) {
	episodes, err := LoadEpisodes(path)
	if err != nil {
		return nil, err
	}
	return NewNetwork(name, episodes, opts...)
}

// rebuild re-estimates CPTs, the evaluator, the label pdf and the entropy together.
func (n *Network) rebuild() {
	n.params = n.dataset.EstimateParameters()
	n.evaluator = NewEvaluator(n.params)
	n.calculatePDF()
	n.entropy = entropyOf(n.pdf[:])
	n.logger.Debug("belief network estimated",
		zap.String("network", n.name),
		zap.Int("episodes", n.dataset.Len()),
		zap.Float64("entropy", n.entropy))
}

func (n *Network) calculatePDF() {
	total := float64(n.dataset.Len() + len(domain.Labels))
	for i := range n.pdf {
		n.pdf[i] = laplacePrior
	}
	for _, e := range n.dataset.episodes {
		l, _ := e.Label()
		n.pdf[l.Index()]++
	}
	for i := range n.pdf {
		n.pdf[i] /= total
	}
}

func entropyOf(pdf []float64) float64 {
	var h float64
	for _, p := range pdf {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

func (n *Network) Name() string {
	return n.name
}

// Episodes returns a copy of the backing dataset.
func (n *Network) Episodes() []domain.Episode {
	return n.dataset.Episodes()
}

func (n *Network) Len() int {
	return n.dataset.Len()
}

func (n *Network) Parameters() CPT {
	return n.params
}

// PDF returns the label distribution keyed by label.
func (n *Network) PDF() map[domain.Label]float64 {
	out := make(map[domain.Label]float64, len(domain.Labels))
	for i, l := range domain.Labels {
		out[l] = n.pdf[i]
	}
	return out
}

// PDFVector returns the label distribution ordered as domain.Labels.
func (n *Network) PDFVector() []float64 {
	out := make([]float64, len(n.pdf))
	copy(out, n.pdf[:])
	return out
}

// Entropy is the Shannon entropy of the label distribution, in bits.
func (n *Network) Entropy() float64 {
	return n.entropy
}

// Query runs exact inference under arbitrary evidence.
func (n *Network) Query(ev Evidence) (Marginals, error) {
	return n.evaluator.Query(ev)
}

// DecisionMaking infers where the robot should look given the informant's hint.
func (n *Network) DecisionMaking(informantAction domain.Side) (Decision, error) {
	if !informantAction.Valid() {
		return Decision{}, &domain.ValidationError{Field: "informant_action", Reason: fmt.Sprintf("expected A or B, got %q", informantAction)}
	}
	m, err := n.evaluator.Query(Evidence{domain.InformantAction: informantAction})
	if err != nil {
		return Decision{}, err
	}
	post := m.Of(domain.RobotAction)
	return Decision{Action: post.Argmax(), Posterior: post}, nil
}

// BeliefEstimation infers what the informant believes and would point to,
// given the true sticker location known to the robot.
func (n *Network) BeliefEstimation(robotKnowledge domain.Side) (Estimate, error) {
	if !robotKnowledge.Valid() {
		return Estimate{}, &domain.ValidationError{Field: "robot_knowledge", Reason: fmt.Sprintf("expected A or B, got %q", robotKnowledge)}
	}
	m, err := n.evaluator.Query(Evidence{
		domain.RobotBelief: robotKnowledge,
		domain.RobotAction: robotKnowledge,
	})
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		InformantBelief: m.Of(domain.InformantBelief).Argmax(),
		InformantAction: m.Of(domain.InformantAction).Argmax(),
	}, nil
}

// UpdateBelief appends an episode and fully re-estimates the network.
func (n *Network) UpdateBelief(e domain.Episode) error {
	if _, err := e.Label(); err != nil {
		return err
	}
	n.dataset.episodes = append(n.dataset.episodes, e)
	n.rebuild()
	return nil
}

// Surprise is the information content of e under the current label distribution, in bits.
func (n *Network) Surprise(e domain.Episode) (float64, error) {
	l, err := e.Label()
	if err != nil {
		return 0, err
	}
	return -math.Log2(n.pdf[l.Index()]), nil
}

// EntropyDifference is |surprise - entropy| rounded to one decimal, then halved.
func (n *Network) EntropyDifference(e domain.Episode) (float64, error) {
	s, err := n.Surprise(e)
	if err != nil {
		return 0, err
	}
	return math.Round(math.Abs(s-n.entropy)*10) / 10 / entropyNormalization, nil
}

// ImportanceWeight scales the entropy difference of e by how long ago it happened.
func (n *Network) ImportanceWeight(e domain.Episode, now int) (float64, error) {
	if e.Time() > now {
		return 0, &domain.ValidationError{Field: "time", Reason: fmt.Sprintf("episode time %d is after current time %d", e.Time(), now)}
	}
	diff, err := n.EntropyDifference(e)
	if err != nil {
		return 0, err
	}
	fading := float64(now-e.Time()+1) / timeMitigation
	return diff / fading, nil
}

// DuplicationCount maps an importance weight to a number of copies.
func DuplicationCount(weight float64) int {
	switch {
	case weight < DuplicateOnceThreshold:
		return 0
	case weight < DuplicateTwiceThreshold:
		return 1
	case weight < DuplicateThriceThreshold:
		return 2
	default:
		return 3
	}
}

// ImportanceSampling returns 0 to 3 copies of e; anomalous and recent episodes get more.
func (n *Network) ImportanceSampling(e domain.Episode, now int) ([]domain.Episode, error) {
	w, err := n.ImportanceWeight(e, now)
	if err != nil {
		return nil, err
	}
	copies := make([]domain.Episode, DuplicationCount(w))
	for i := range copies {
		copies[i] = e
	}
	return copies, nil
}

// Save writes the dataset to <dir>/<name>.csv, creating dir if needed.
func (n *Network) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}
	return n.dataset.Save(TablePath(dir, n.name))
}

// TablePath is the file holding the dataset of the named network.
func TablePath(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}
