package service

import (
	"github.com/Harshitk-cp/trustmind/internal/domain"
)

// Verdict describes how a decision turned out for the robot.
type Verdict string

const (
	VerdictTrustedCorrect    Verdict = "trusted_correct"
	VerdictTrustedTricked    Verdict = "trusted_tricked"
	VerdictDistrustedCorrect Verdict = "distrusted_correct"
	VerdictDistrustedWrong   Verdict = "distrusted_wrong"
	VerdictFound             Verdict = "found"
	VerdictNotFound          Verdict = "not_found"
)

// Trial is one familiarization step: the informant's hint and whether the
// sticker was found where the hint pointed.
type Trial struct {
	Hint  domain.Side `json:"hint"`
	Found bool        `json:"found"`
}

// EncodeDemonstration turns a familiarization trial into an episode label.
// A mature theory of mind separates what the informant believes from what it says;
// an immature one takes every hint as the truth.
func EncodeDemonstration(hint domain.Side, found, mature bool) (domain.Label, error) {
	if !hint.Valid() {
		return domain.LabelInvalid, &domain.ValidationError{Field: "hint", Reason: "expected A or B"}
	}
	if !mature {
		if hint == domain.SideA {
			return domain.LabelTruthA, nil
		}
		return domain.LabelTruthB, nil
	}

	var raw domain.RawData
	if (hint == domain.SideA && found) || (hint == domain.SideB && !found) {
		raw[domain.RobotBelief], raw[domain.RobotAction], raw[domain.InformantBelief] = 1, 1, 1
	}
	raw[domain.InformantAction] = hint.Bit()
	return domain.LabelOf(raw)
}

var matureOutcomes = map[domain.Side]map[bool]domain.Label{
	domain.SideA: {true: domain.LabelTruthA, false: domain.LabelLieA},
	domain.SideB: {true: domain.LabelTruthB, false: domain.LabelLieB},
}

// EncodeOutcome turns the robot's choice and what it saw into an episode label.
func EncodeOutcome(choice domain.Side, found, mature bool) (domain.Label, error) {
	if !choice.Valid() {
		return domain.LabelInvalid, &domain.ValidationError{Field: "choice", Reason: "expected A or B"}
	}
	if !mature {
		if choice == domain.SideA {
			return domain.LabelTruthA, nil
		}
		return domain.LabelTruthB, nil
	}
	return matureOutcomes[choice][found], nil
}

// VerdictOf classifies a decision. The robot trusted the informant when it looked where told.
func VerdictOf(hint, choice domain.Side, found, mature bool) Verdict {
	if !mature {
		if found {
			return VerdictFound
		}
		return VerdictNotFound
	}
	trusted := hint == choice
	switch {
	case trusted && found:
		return VerdictTrustedCorrect
	case trusted:
		return VerdictTrustedTricked
	case found:
		return VerdictDistrustedCorrect
	default:
		return VerdictDistrustedWrong
	}
}
