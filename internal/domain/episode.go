package domain

import (
	"encoding/json"
	"fmt"
)

// Label names one of the four canonical interaction outcomes.
type Label int

const (
	LabelInvalid Label = iota
	LabelTruthA
	LabelTruthB
	LabelLieA
	LabelLieB
)

// Labels lists the canonical labels in pdf order.
var Labels = [...]Label{LabelTruthA, LabelTruthB, LabelLieA, LabelLieB}

// RawData is the fixed-order indicator tuple of an episode:
// robot belief, robot action, informant belief, informant action. 1 means box A.
type RawData [4]int

type labelSpec struct {
	name      string
	raw       RawData
	symmetric Label
}

var labelTable = map[Label]labelSpec{
	LabelTruthA: {name: "truth_a", raw: RawData{1, 1, 1, 1}, symmetric: LabelTruthB},
	LabelTruthB: {name: "truth_b", raw: RawData{0, 0, 0, 0}, symmetric: LabelTruthA},
	LabelLieA:   {name: "lie_a", raw: RawData{0, 0, 0, 1}, symmetric: LabelLieB},
	LabelLieB:   {name: "lie_b", raw: RawData{1, 1, 1, 0}, symmetric: LabelLieA},
}

func (l Label) Valid() bool {
	_, ok := labelTable[l]
	return ok
}

func (l Label) String() string {
	if spec, ok := labelTable[l]; ok {
		return spec.name
	}
	return "invalid"
}

// Index returns the position of l in Labels, or -1.
func (l Label) Index() int {
	if !l.Valid() {
		return -1
	}
	return int(l) - 1
}

// ParseLabel maps a label name back to its variant.
func ParseLabel(name string) (Label, error) {
	for l, spec := range labelTable {
		if spec.name == name {
			return l, nil
		}
	}
	return LabelInvalid, &ValidationError{Field: "label", Reason: fmt.Sprintf("unknown label %q", name)}
}

// LabelOf classifies a raw tuple.
func LabelOf(raw RawData) (Label, error) {
	for l, spec := range labelTable {
		if spec.raw == raw {
			return l, nil
		}
	}
	return LabelInvalid, &ValidationError{Field: "raw_data", Reason: fmt.Sprintf("invalid pattern %v", raw)}
}

// Episode is one observed interaction. The pattern is fixed at construction;
// only the logical time may be re-stamped through WithTime.
type Episode struct {
	label Label
	time  int
}

// NewEpisode validates raw against the canonical patterns.
func NewEpisode(raw RawData, time int) (Episode, error) {
	l, err := LabelOf(raw)
	if err != nil {
		return Episode{}, err
	}
	return Episode{label: l, time: time}, nil
}

// EpisodeOf builds an episode directly from a label.
func EpisodeOf(l Label, time int) (Episode, error) {
	if !l.Valid() {
		return Episode{}, &ValidationError{Field: "label", Reason: "invalid label"}
	}
	return Episode{label: l, time: time}, nil
}

// Label returns the class of the episode. The zero Episode has no class.
func (e Episode) Label() (Label, error) {
	if !e.label.Valid() {
		return LabelInvalid, &ValidationError{Field: "raw_data", Reason: "episode has no canonical pattern"}
	}
	return e.label, nil
}

func (e Episode) Valid() bool {
	return e.label.Valid()
}

func (e Episode) RawData() RawData {
	return labelTable[e.label].raw
}

func (e Episode) Time() int {
	return e.time
}

// WithTime returns a copy of e stamped with t.
func (e Episode) WithTime(t int) Episode {
	e.time = t
	return e
}

// Symmetric returns the logically opposite episode at the same time.
func (e Episode) Symmetric() (Episode, error) {
	l, err := e.Label()
	if err != nil {
		return Episode{}, err
	}
	return Episode{label: labelTable[l].symmetric, time: e.time}, nil
}

func (e Episode) String() string {
	return fmt.Sprintf("Time = %d, Data = %v", e.time, e.RawData())
}

type episodeJSON struct {
	RawData RawData `json:"raw_data"`
	Time    int     `json:"time"`
	Label   string  `json:"label,omitempty"`
}

func (e Episode) MarshalJSON() ([]byte, error) {
	return json.Marshal(episodeJSON{RawData: e.RawData(), Time: e.time, Label: e.label.String()})
}

func (e *Episode) UnmarshalJSON(data []byte) error {
	var v episodeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	ep, err := NewEpisode(v.RawData, v.Time)
	if err != nil {
		return err
	}
	*e = ep
	return nil
}
