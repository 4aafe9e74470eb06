package model

import (
	"time"

	"telegram-dance-technique/internal/domain"

	"github.com/google/uuid"
)

// Program is a top-level grouping of dances, e.g. a skill level
// (Bronze, Silver, Gold). Dances reference exactly one program.
type Program struct {
	ID        string
	Name      string
	Position  int
	CreatedAt time.Time
}

func (p *Program) IsZero() bool { return p == nil || p.ID == "" }

// NewProgram validates and constructs a program.
func NewProgram(id, name string, position int) (*Program, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || position < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Program{
		ID:        id,
		Name:      name,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}
