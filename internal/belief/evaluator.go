package belief

import (
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/domain"
)

// jointStates is the size of the joint space over four binary variables.
const jointStates = 1 << len(domain.Variables)

// Assignment gives every variable a value, in raw-data order. 1 is box A.
type Assignment domain.RawData

// Evidence fixes some variables to observed sides.
type Evidence map[domain.Variable]domain.Side

func (ev Evidence) validate() error {
	for v, s := range ev {
		if !v.Valid() {
			return &domain.ValidationError{Field: "evidence", Reason: fmt.Sprintf("unknown variable %d", int(v))}
		}
		if !s.Valid() {
			return &domain.ValidationError{Field: "evidence", Reason: fmt.Sprintf("%s must be A or B, got %q", v, s)}
		}
	}
	return nil
}

func (ev Evidence) consistent(a Assignment) bool {
	for v, s := range ev {
		if a[v] != s.Bit() {
			return false
		}
	}
	return true
}

// Posterior is the marginal probability of each side for one variable.
type Posterior struct {
	A float64 `json:"A"`
	B float64 `json:"B"`
}

// Argmax picks A only when it is strictly more probable.
func (p Posterior) Argmax() domain.Side {
	if p.A > p.B {
		return domain.SideA
	}
	return domain.SideB
}

// Marginals holds the posterior of every variable, in raw-data order.
type Marginals [len(domain.Variables)]Posterior

func (m Marginals) Of(v domain.Variable) Posterior {
	return m[v]
}

// Evaluator performs exact inference by enumerating the joint space.
type Evaluator struct {
	cpt CPT
}

func NewEvaluator(cpt CPT) *Evaluator {
	return &Evaluator{cpt: cpt}
}

// Joint returns the probability of a full assignment under the network factorisation
// P(Xi) P(Yi|Xi) P(Xr) P(Yr|Yi,Xr).
func (e *Evaluator) Joint(a Assignment) float64 {
	xr, yr, xi, yi := a[domain.RobotBelief], a[domain.RobotAction], a[domain.InformantBelief], a[domain.InformantAction]
	return e.cpt.InformantBelief[xi] *
		e.cpt.InformantAction[xi][yi] *
		e.cpt.RobotBelief[xr] *
		e.cpt.RobotAction[robotActionRow(yi, xr)][yr]
}

// Query conditions on evidence and marginalises every variable.
func (e *Evaluator) Query(ev Evidence) (Marginals, error) {
	var m Marginals
	if err := ev.validate(); err != nil {
		return m, err
	}

	var total float64
	var mass [len(domain.Variables)][2]float64
	for state := 0; state < jointStates; state++ {
		a := assignmentOf(state)
		if !ev.consistent(a) {
			continue
		}
		p := e.Joint(a)
		total += p
		for v := range a {
			mass[v][a[v]] += p
		}
	}
	if total == 0 {
		return m, &domain.ValidationError{Field: "evidence", Reason: "evidence has zero probability"}
	}

	for v := range mass {
		m[v] = Posterior{A: mass[v][1] / total, B: mass[v][0] / total}
	}
	return m, nil
}

// assignmentOf decodes a state number; bit 3 is robot belief, bit 0 informant action.
func assignmentOf(state int) Assignment {
	var a Assignment
	for i := range a {
		a[i] = (state >> (len(a) - 1 - i)) & 1
	}
	return a
}
