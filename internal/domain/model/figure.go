package model

import (
	"time"

	"telegram-dance-technique/internal/domain"

	"github.com/google/uuid"
)

// Figure is a technique element within a dance. Figures carry an
// explicit display position; listings order by position, then name.
type Figure struct {
	ID        string
	DanceID   string
	Name      string
	Position  int
	CreatedAt time.Time
}

func (f *Figure) IsZero() bool { return f == nil || f.ID == "" }

// NewFigure validates and constructs a figure.
func NewFigure(id, danceID, name string, position int) (*Figure, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if danceID == "" || name == "" || position < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Figure{
		ID:        id,
		DanceID:   danceID,
		Name:      name,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}
