package model

import (
	"time"

	"telegram-dance-technique/internal/domain"

	"github.com/google/uuid"
)

// Dance is a named dance style belonging to exactly one program.
type Dance struct {
	ID        string
	ProgramID string
	Name      string
	Position  int
	CreatedAt time.Time
}

func (d *Dance) IsZero() bool { return d == nil || d.ID == "" }

// NewDance validates and constructs a dance.
func NewDance(id, programID, name string, position int) (*Dance, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if programID == "" || name == "" || position < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Dance{
		ID:        id,
		ProgramID: programID,
		Name:      name,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}
