package belief

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNetwork(t *testing.T, episodes []domain.Episode) *Network {
	t.Helper()
	n, err := NewNetwork("Informer0", episodes, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	return n
}

func pdfSum(n *Network) float64 {
	var sum float64
	for _, p := range n.PDF() {
		sum += p
	}
	return sum
}

func TestNetwork_PriorOnly(t *testing.T) {
	n := newTestNetwork(t, nil)

	for _, l := range domain.Labels {
		assert.InDelta(t, 0.25, n.PDF()[l], 1e-12)
	}
	assert.InDelta(t, 2.0, n.Entropy(), 1e-12)
	assert.InDelta(t, 1.0, pdfSum(n), 1e-9)

	for _, hint := range []domain.Side{domain.SideA, domain.SideB} {
		d, err := n.DecisionMaking(hint)
		require.NoError(t, err)
		assert.True(t, d.Action.Valid())
		// A flat prior ties, and ties resolve to B.
		assert.Equal(t, domain.SideB, d.Action)
	}
}

func TestNetwork_UpdateWithTruthA(t *testing.T) {
	n := newTestNetwork(t, nil)
	before := n.Entropy()

	require.NoError(t, n.UpdateBelief(episode(t, domain.LabelTruthA, 0)))

	assert.Less(t, n.Entropy(), before)
	assert.InDelta(t, 1.921928, n.Entropy(), 1e-6)
	assert.InDelta(t, 0.4, n.PDF()[domain.LabelTruthA], 1e-12)
	assert.Equal(t, 1, n.Len())

	d, err := n.DecisionMaking(domain.SideA)
	require.NoError(t, err)
	assert.Equal(t, domain.SideA, d.Action)
	assert.Greater(t, d.Posterior.A, d.Posterior.B)
	assert.InDelta(t, 11.0/18.0, d.Posterior.A, 1e-12)
}

func TestNetwork_BeliefEstimation(t *testing.T) {
	n := newTestNetwork(t, []domain.Episode{episode(t, domain.LabelTruthA, 0)})

	for _, knowledge := range []domain.Side{domain.SideA, domain.SideB} {
		est, err := n.BeliefEstimation(knowledge)
		require.NoError(t, err)
		assert.Equal(t, Estimate{InformantBelief: domain.SideA, InformantAction: domain.SideA}, est)
	}

	liar := newTestNetwork(t, []domain.Episode{
		episode(t, domain.LabelLieA, 0),
		episode(t, domain.LabelLieB, 0),
		episode(t, domain.LabelLieA, 1),
		episode(t, domain.LabelLieB, 1),
	})
	est, err := liar.BeliefEstimation(domain.SideA)
	require.NoError(t, err)
	assert.Equal(t, domain.SideA, est.InformantBelief)
	assert.Equal(t, domain.SideB, est.InformantAction)
}

func TestNetwork_InvalidQueries(t *testing.T) {
	n := newTestNetwork(t, mixedDataset(t))

	_, err := n.DecisionMaking("C")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = n.BeliefEstimation("")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = n.Query(Evidence{domain.Variable(7): domain.SideA})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = n.Query(Evidence{domain.RobotBelief: "left"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNetwork_QueryMarginalsNormalized(t *testing.T) {
	n := newTestNetwork(t, mixedDataset(t))

	evidences := []Evidence{
		nil,
		{domain.InformantAction: domain.SideA},
		{domain.RobotBelief: domain.SideB, domain.RobotAction: domain.SideB},
	}
	for _, ev := range evidences {
		m, err := n.Query(ev)
		require.NoError(t, err)
		for _, v := range domain.Variables {
			p := m.Of(v)
			assert.InDelta(t, 1.0, p.A+p.B, 1e-12)
		}
		for v, s := range ev {
			if s == domain.SideA {
				assert.InDelta(t, 1.0, m.Of(v).A, 1e-12)
			} else {
				assert.InDelta(t, 1.0, m.Of(v).B, 1e-12)
			}
		}
	}
}

func TestNetwork_UnconditionedMarginalsMatchCPT(t *testing.T) {
	n := newTestNetwork(t, mixedDataset(t))
	m, err := n.Query(nil)
	require.NoError(t, err)

	cpt := n.Parameters()
	assert.InDelta(t, cpt.RobotBelief[1], m.Of(domain.RobotBelief).A, 1e-12)
	assert.InDelta(t, cpt.InformantBelief[1], m.Of(domain.InformantBelief).A, 1e-12)
}

func TestNetwork_UpdateRejectsInvalidEpisode(t *testing.T) {
	n := newTestNetwork(t, mixedDataset(t))
	entropy := n.Entropy()

	err := n.UpdateBelief(domain.Episode{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 6, n.Len())
	assert.Equal(t, entropy, n.Entropy())
}

func TestNetwork_PDFAndEntropyBounds(t *testing.T) {
	n := newTestNetwork(t, nil)
	labels := []domain.Label{domain.LabelTruthA, domain.LabelTruthA, domain.LabelLieB, domain.LabelTruthB, domain.LabelTruthA}

	for i := 0; i < 40; i++ {
		require.NoError(t, n.UpdateBelief(episode(t, labels[i%len(labels)], i)))
		assert.InDelta(t, 1.0, pdfSum(n), 1e-9)
		assert.GreaterOrEqual(t, n.Entropy(), 0.0)
		assert.LessOrEqual(t, n.Entropy(), 2.0)
	}

	var expected float64
	for _, p := range n.PDFVector() {
		expected -= p * math.Log2(p)
	}
	assert.InDelta(t, expected, n.Entropy(), 1e-12)
}

func TestNetwork_SurpriseAndEntropyDifference(t *testing.T) {
	prior := newTestNetwork(t, nil)
	s, err := prior.Surprise(episode(t, domain.LabelLieA, 0))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s, 1e-12)
	diff, err := prior.EntropyDifference(episode(t, domain.LabelLieA, 0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, diff)

	n := newTestNetwork(t, []domain.Episode{episode(t, domain.LabelTruthA, 0)})
	s, err = n.Surprise(episode(t, domain.LabelTruthA, 0))
	require.NoError(t, err)
	assert.InDelta(t, -math.Log2(0.4), s, 1e-12)

	diff, err = n.EntropyDifference(episode(t, domain.LabelTruthA, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, diff, 1e-12)

	diff, err = n.EntropyDifference(episode(t, domain.LabelLieA, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, diff, 1e-12)

	_, err = n.Surprise(domain.Episode{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDuplicationCount(t *testing.T) {
	tests := []struct {
		weight float64
		want   int
	}{
		{0, 0},
		{0.019, 0},
		{0.02, 1},
		{0.199, 1},
		{0.2, 2},
		{0.49, 2},
		{0.5, 3},
		{2, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DuplicationCount(tt.weight), "weight %v", tt.weight)
	}
}

func TestNetwork_ImportanceSampling(t *testing.T) {
	n := newTestNetwork(t, []domain.Episode{episode(t, domain.LabelTruthA, 0)})
	truthA := episode(t, domain.LabelTruthA, 0)

	// weight 0.3 / 0.5 = 0.6
	copies, err := n.ImportanceSampling(truthA, 0)
	require.NoError(t, err)
	assert.Len(t, copies, 3)
	for _, c := range copies {
		assert.Equal(t, truthA, c)
	}

	// weight 0.3 / 2 = 0.15
	copies, err = n.ImportanceSampling(truthA, 3)
	require.NoError(t, err)
	assert.Len(t, copies, 1)

	// weight 0.2 / 0.5 = 0.4
	copies, err = n.ImportanceSampling(episode(t, domain.LabelLieA, 0), 0)
	require.NoError(t, err)
	assert.Len(t, copies, 2)

	_, err = n.ImportanceSampling(episode(t, domain.LabelLieA, 5), 4)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNetwork_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "datasets")
	n := newTestNetwork(t, mixedDataset(t))
	require.NoError(t, n.Save(dir))

	loaded, err := LoadNetwork("Informer0", TablePath(dir, "Informer0"))
	require.NoError(t, err)
	assert.Equal(t, n.Episodes(), loaded.Episodes())
	assert.Equal(t, n.Parameters(), loaded.Parameters())
	assert.Equal(t, n.Entropy(), loaded.Entropy())

	_, err = LoadNetwork("Informer9", TablePath(dir, "Informer9"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
