package model

import (
	"time"

	"telegram-dance-technique/internal/domain"

	"github.com/google/uuid"
)

// Author is an attributed source of technique content (a book author
// whose description of a figure is served by the bot).
type Author struct {
	ID        string
	Name      string
	Source    string // book / reference the material comes from
	CreatedAt time.Time
}

func (a *Author) IsZero() bool { return a == nil || a.ID == "" }

// NewAuthor validates and constructs an author.
func NewAuthor(id, name, source string) (*Author, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Author{
		ID:        id,
		Name:      name,
		Source:    source,
		CreatedAt: time.Now(),
	}, nil
}
