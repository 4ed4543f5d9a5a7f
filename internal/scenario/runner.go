package scenario

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/domain"
	"github.com/Harshitk-cp/trustmind/internal/service"
	"go.uber.org/zap"
)

// StepResult records what happened at one step.
type StepResult struct {
	Step      int             `json:"step" yaml:"step"`
	Kind      string          `json:"kind" yaml:"kind"`
	Informant int             `json:"informant" yaml:"informant"`
	Choice    domain.Side     `json:"choice,omitempty" yaml:"choice,omitempty"`
	Verdict   service.Verdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Belief    domain.Side     `json:"belief,omitempty" yaml:"belief,omitempty"`
	Action    domain.Side     `json:"action,omitempty" yaml:"action,omitempty"`
	Entropy   float64         `json:"entropy" yaml:"entropy"`
}

type Report struct {
	Name    string       `json:"name" yaml:"name"`
	Results []StepResult `json:"results" yaml:"results"`
	Time    int          `json:"time" yaml:"time"`
}

// Runner drives a TrustService through a script. The sticker world is simulated:
// a look is successful exactly when it is at the sticker's side.
type Runner struct {
	svc    *service.TrustService
	logger *zap.Logger
}

func NewRunner(svc *service.TrustService, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{svc: svc, logger: logger}
}

// Run executes every step in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, sc *Script) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Name: sc.Name}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.runStep(ctx, step)
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", i, step.Kind(), err)
		}
		res.Step = i
		res.Kind = step.Kind()
		if view, err := r.svc.Informant(res.Informant); err == nil {
			res.Entropy = view.Entropy
		}
		report.Results = append(report.Results, res)

		r.logger.Debug("scenario step",
			zap.Int("step", i),
			zap.String("kind", res.Kind),
			zap.Int("informant", res.Informant),
			zap.String("verdict", string(res.Verdict)))
	}
	report.Time = r.svc.Now()
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) (StepResult, error) {
	switch {
	case step.Familiarize != nil:
		trials := make([]service.Trial, len(step.Familiarize.Trials))
		for i, tr := range step.Familiarize.Trials {
			trials[i] = service.Trial{Hint: tr.Hint, Found: tr.Hint == tr.Sticker}
		}
		idx, err := r.svc.Familiarize(ctx, trials)
		return StepResult{Informant: idx}, err

	case step.Decide != nil:
		d := step.Decide
		decision, err := r.svc.Decide(ctx, d.Informant, d.Hint)
		if err != nil {
			return StepResult{}, err
		}
		out, err := r.svc.RecordOutcome(ctx, service.OutcomeInput{
			Informant: d.Informant,
			Hint:      d.Hint,
			Choice:    decision.Action,
			Found:     decision.Action == d.Sticker,
		})
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{Informant: d.Informant, Choice: decision.Action, Verdict: out.Verdict}, nil

	case step.Estimate != nil:
		est, err := r.svc.Estimate(ctx, step.Estimate.Informant, step.Estimate.Sticker)
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{Informant: step.Estimate.Informant, Belief: est.InformantBelief, Action: est.InformantAction}, nil

	default:
		idx, err := r.svc.RegisterUnknown(ctx)
		return StepResult{Informant: idx}, err
	}
}
