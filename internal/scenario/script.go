// Package scenario runs scripted trust experiments against a simulated sticker world.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"gopkg.in/yaml.v3"
)

// Script is a YAML experiment description.
type Script struct {
	Name string `yaml:"name"`
	// Mature and Update default to true when omitted.
	Mature *bool  `yaml:"mature,omitempty"`
	Update *bool  `yaml:"update,omitempty"`
	Steps  []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Familiarize *FamiliarizeStep `yaml:"familiarize,omitempty"`
	Decide      *DecideStep      `yaml:"decide,omitempty"`
	Estimate    *EstimateStep    `yaml:"estimate,omitempty"`
	Unknown     *UnknownStep     `yaml:"unknown,omitempty"`
}

type TrialSpec struct {
	Hint    domain.Side `yaml:"hint"`
	Sticker domain.Side `yaml:"sticker"`
}

type FamiliarizeStep struct {
	Trials []TrialSpec `yaml:"trials"`
}

type DecideStep struct {
	Informant int         `yaml:"informant"`
	Hint      domain.Side `yaml:"hint"`
	Sticker   domain.Side `yaml:"sticker"`
}

type EstimateStep struct {
	Informant int         `yaml:"informant"`
	Sticker   domain.Side `yaml:"sticker"`
}

type UnknownStep struct{}

// Kind names the action carried by s, or "" if it carries none.
func (s Step) Kind() string {
	switch {
	case s.Familiarize != nil:
		return "familiarize"
	case s.Decide != nil:
		return "decide"
	case s.Estimate != nil:
		return "estimate"
	case s.Unknown != nil:
		return "unknown"
	}
	return ""
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Familiarize != nil, s.Decide != nil, s.Estimate != nil, s.Unknown != nil} {
		if set {
			n++
		}
	}
	return n
}

func (sc *Script) MatureToM() bool {
	return sc.Mature == nil || *sc.Mature
}

func (sc *Script) UpdateOnDecision() bool {
	return sc.Update == nil || *sc.Update
}

func sideErr(step int, field string, s domain.Side) error {
	if s.Valid() {
		return nil
	}
	return &domain.ValidationError{Field: fmt.Sprintf("steps[%d].%s", step, field), Reason: fmt.Sprintf("%q is not A or B", s)}
}

// Validate checks every step before anything runs.
func (sc *Script) Validate() error {
	if len(sc.Steps) == 0 {
		return &domain.ValidationError{Field: "steps", Reason: "script has no steps"}
	}
	for i, s := range sc.Steps {
		if s.actions() != 1 {
			return &domain.ValidationError{Field: fmt.Sprintf("steps[%d]", i), Reason: "exactly one action is required"}
		}
		var errs []error
		switch {
		case s.Familiarize != nil:
			if len(s.Familiarize.Trials) == 0 {
				errs = append(errs, &domain.ValidationError{Field: fmt.Sprintf("steps[%d].trials", i), Reason: "no trials"})
			}
			for j, tr := range s.Familiarize.Trials {
				errs = append(errs,
					sideErr(i, fmt.Sprintf("trials[%d].hint", j), tr.Hint),
					sideErr(i, fmt.Sprintf("trials[%d].sticker", j), tr.Sticker))
			}
		case s.Decide != nil:
			errs = append(errs, sideErr(i, "hint", s.Decide.Hint), sideErr(i, "sticker", s.Decide.Sticker))
		case s.Estimate != nil:
			errs = append(errs, sideErr(i, "sticker", s.Estimate.Sticker))
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Script
	if err := dec.Decode(&sc); err != nil {
		return nil, &domain.ValidationError{Field: "script", Reason: err.Error()}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Path: path, Err: err}
	}
	return Parse(bytes.NewReader(data))
}
