package domain

import (
	"time"

	"github.com/google/uuid"
)

// InformantProfile is a snapshot of one network's label distribution.
// PDF is ordered as Labels: truth_a, truth_b, lie_a, lie_b.
type InformantProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PDF       []float32 `json:"pdf"`
	Entropy   float64   `json:"entropy"`
	Episodes  int       `json:"episodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileWithDistance is a profile with its L2 distance from a query vector.
type ProfileWithDistance struct {
	InformantProfile
	Distance float64 `json:"distance"`
}
