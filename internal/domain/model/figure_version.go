package model

import (
	"time"

	"telegram-dance-technique/internal/domain"

	"github.com/google/uuid"
)

// Block kinds of a figure version, in canonical render order.
const (
	BlockStepsLeader   = "steps_leader"
	BlockStepsFollower = "steps_follower"
	BlockShaping       = "shaping"
	BlockBounce        = "bounce"
	BlockNotes         = "notes"
	BlockLinks         = "links"
)

func validBlockKind(kind string) bool {
	switch kind {
	case BlockStepsLeader, BlockStepsFollower, BlockShaping, BlockBounce, BlockNotes, BlockLinks:
		return true
	}
	return false
}

// FigureVersion is one author's description of a figure. A figure has
// at most one version per author.
type FigureVersion struct {
	ID        string
	FigureID  string
	AuthorID  string
	CreatedAt time.Time
}

func (v *FigureVersion) IsZero() bool { return v == nil || v.ID == "" }

// NewFigureVersion validates and constructs a figure version.
func NewFigureVersion(id, figureID, authorID string) (*FigureVersion, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if figureID == "" || authorID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &FigureVersion{
		ID:        id,
		FigureID:  figureID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}, nil
}

// TechniqueBlock is one ordered section of a figure version
// (leader steps, follower steps, shaping, ...). Text lives in the
// JSONB content column; only the "text" field is rendered.
type TechniqueBlock struct {
	ID        string
	VersionID string
	Kind      string
	Text      string
	Position  int
}

// NewTechniqueBlock validates and constructs a technique block.
func NewTechniqueBlock(id, versionID, kind, text string, position int) (*TechniqueBlock, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if versionID == "" || position < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !validBlockKind(kind) {
		return nil, domain.ErrInvalidArgument
	}
	return &TechniqueBlock{
		ID:        id,
		VersionID: versionID,
		Kind:      kind,
		Text:      text,
		Position:  position,
	}, nil
}
