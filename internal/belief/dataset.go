package belief

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Harshitk-cp/trustmind/internal/domain"
)

// laplacePrior seeds every count so no estimated probability is ever zero.
const laplacePrior = 1.0

// CPT holds the conditional probability tables of the network.
// Index 1 is box A and index 0 is box B throughout.
type CPT struct {
	RobotBelief     [2]float64    `json:"robot_belief" yaml:"robot_belief"`         // P(Xr)
	InformantBelief [2]float64    `json:"informant_belief" yaml:"informant_belief"` // P(Xi)
	InformantAction [2][2]float64 `json:"informant_action" yaml:"informant_action"` // P(Yi | Xi), rows by Xi
	RobotAction     [4][2]float64 `json:"robot_action" yaml:"robot_action"`         // P(Yr | Yi, Xr), rows by Yi<<1 | Xr
}

// Counts holds Laplace-smoothed sufficient statistics with the same layout as CPT.
type Counts CPT

func priorCounts() Counts {
	var c Counts
	for i := range c.RobotBelief {
		c.RobotBelief[i] = laplacePrior
		c.InformantBelief[i] = laplacePrior
	}
	for i := range c.InformantAction {
		for j := range c.InformantAction[i] {
			c.InformantAction[i][j] = laplacePrior
		}
	}
	for i := range c.RobotAction {
		for j := range c.RobotAction[i] {
			c.RobotAction[i][j] = laplacePrior
		}
	}
	return c
}

// robotActionRow encodes the joint parent value (informant action, robot belief).
func robotActionRow(informantAction, robotBelief int) int {
	return informantAction<<1 | robotBelief
}

// DatasetParser turns an ordered episode dataset into maximum-likelihood CPTs.
type DatasetParser struct {
	episodes []domain.Episode
	counts   Counts
	trials   int
}

// NewDatasetParser validates and copies episodes.
func NewDatasetParser(episodes []domain.Episode) (*DatasetParser, error) {
	for i, e := range episodes {
		if !e.Valid() {
			return nil, &domain.ValidationError{Field: "dataset", Reason: fmt.Sprintf("episode %d has no canonical pattern", i)}
		}
	}
	cp := make([]domain.Episode, len(episodes))
	copy(cp, episodes)
	return &DatasetParser{episodes: cp, counts: priorCounts()}, nil
}

// LoadDatasetParser reads a persisted episode table.
func LoadDatasetParser(path string) (*DatasetParser, error) {
	episodes, err := LoadEpisodes(path)
	if err != nil {
		return nil, err
	}
	return NewDatasetParser(episodes)
}

// Episodes returns a copy of the backing dataset.
func (p *DatasetParser) Episodes() []domain.Episode {
	cp := make([]domain.Episode, len(p.episodes))
	copy(cp, p.episodes)
	return cp
}

func (p *DatasetParser) Len() int {
	return len(p.episodes)
}

// Trials is the number of episodes counted by the last ReadDataset.
func (p *DatasetParser) Trials() int {
	return p.trials
}

func (p *DatasetParser) Counts() Counts {
	return p.counts
}

// ReadDataset recounts every episode on top of the Laplace prior.
func (p *DatasetParser) ReadDataset() {
	p.counts = priorCounts()
	p.trials = 0
	for _, e := range p.episodes {
		raw := e.RawData()
		xr, yr, xi, yi := raw[domain.RobotBelief], raw[domain.RobotAction], raw[domain.InformantBelief], raw[domain.InformantAction]

		p.counts.RobotBelief[xr]++
		p.counts.InformantBelief[xi]++
		p.counts.InformantAction[xi][yi]++
		p.counts.RobotAction[robotActionRow(yi, xr)][yr]++
		p.trials++
	}
}

// Normalize converts the current counts into row-normalized probabilities.
func (p *DatasetParser) Normalize() CPT {
	c := p.counts
	var out CPT
	out.RobotBelief = mle(c.RobotBelief)
	out.InformantBelief = mle(c.InformantBelief)
	for i := range c.InformantAction {
		out.InformantAction[i] = mle(c.InformantAction[i])
	}
	for i := range c.RobotAction {
		out.RobotAction[i] = mle(c.RobotAction[i])
	}
	return out
}

// EstimateParameters reads the dataset and returns its CPTs.
func (p *DatasetParser) EstimateParameters() CPT {
	p.ReadDataset()
	return p.Normalize()
}

// Save writes the backing episode rows to path.
func (p *DatasetParser) Save(path string) error {
	return SaveEpisodes(path, p.episodes)
}

func mle(pair [2]float64) [2]float64 {
	total := pair[0] + pair[1]
	return [2]float64{pair[0] / total, pair[1] / total}
}

// WriteEpisodes writes one headerless row per episode: the four indicators then the time.
func WriteEpisodes(w io.Writer, episodes []domain.Episode) error {
	cw := csv.NewWriter(w)
	row := make([]string, 5)
	for _, e := range episodes {
		raw := e.RawData()
		for i, v := range raw {
			row[i] = strconv.Itoa(v)
		}
		row[4] = strconv.Itoa(e.Time())
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEpisodes parses rows written by WriteEpisodes.
func ReadEpisodes(r io.Reader) ([]domain.Episode, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	var episodes []domain.Episode
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return episodes, nil
		}
		if err != nil {
			return nil, err
		}
		var raw domain.RawData
		for i := range raw {
			v, err := strconv.Atoi(row[i])
			if err != nil {
				return nil, fmt.Errorf("line %d: field %d: %w", line, i+1, err)
			}
			raw[i] = v
		}
		t, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		e, err := domain.NewEpisode(raw, t)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		episodes = append(episodes, e)
	}
}

// LoadEpisodes reads the table at path. Any failure is a PersistenceError.
func LoadEpisodes(path string) ([]domain.Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	episodes, err := ReadEpisodes(f)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Path: path, Err: err}
	}
	return episodes, nil
}

// SaveEpisodes truncates path and writes the table.
func SaveEpisodes(path string, episodes []domain.Episode) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &domain.PersistenceError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &domain.PersistenceError{Op: "close", Path: path, Err: cerr}
		}
	}()

	if err := WriteEpisodes(f, episodes); err != nil {
		return &domain.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}
