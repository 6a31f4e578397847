package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storybook-server/internal/domain"
)

// StoryRecord is a stored StoryBook together with its storage identity.
type StoryRecord struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Title     string           `json:"title" db:"title"`
	Book      domain.StoryBook `json:"book" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// StoryRepository is the flat keyed document store for generated
// storybooks.
type StoryRepository interface {
	Insert(ctx context.Context, book *domain.StoryBook) (*StoryRecord, error)
	FindAll(ctx context.Context) ([]StoryRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*StoryRecord, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
