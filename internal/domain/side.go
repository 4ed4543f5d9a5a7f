package domain

import "fmt"

// Side is one of the two boxes the sticker can be hidden in.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide accepts exactly "A" or "B".
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideA, SideB:
		return Side(s), nil
	}
	return "", &ValidationError{Field: "side", Reason: fmt.Sprintf("expected A or B, got %q", s)}
}

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Bit is the raw-data encoding of s: 1 for A, 0 for B.
func (s Side) Bit() int {
	if s == SideA {
		return 1
	}
	return 0
}

func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// SideOf decodes a raw-data bit.
func SideOf(bit int) Side {
	if bit == 1 {
		return SideA
	}
	return SideB
}

// Variable indexes the four network nodes in raw-data order.
type Variable int

const (
	RobotBelief Variable = iota
	RobotAction
	InformantBelief
	InformantAction
)

// Variables lists all nodes in raw-data order.
var Variables = [...]Variable{RobotBelief, RobotAction, InformantBelief, InformantAction}

func (v Variable) Valid() bool {
	return v >= RobotBelief && v <= InformantAction
}

func (v Variable) String() string {
	switch v {
	case RobotBelief:
		return "robot_belief"
	case RobotAction:
		return "robot_action"
	case InformantBelief:
		return "informant_belief"
	case InformantAction:
		return "informant_action"
	}
	return fmt.Sprintf("variable(%d)", int(v))
}
