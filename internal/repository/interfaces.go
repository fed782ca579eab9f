package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// PickRepository defines the interface for pick data access. The backing
// store is plain row storage: it enforces no uniqueness on game identity
// (the dedupe package does that at the application layer) and offers no
// transactions; batch semantics live in the committer.
type PickRepository interface {
	Create(ctx context.Context, pick *models.Pick) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	GetAll(ctx context.Context) ([]*models.Pick, error)
	GetByWeek(ctx context.Context, week int) ([]*models.Pick, error)
	GetPending(ctx context.Context) ([]*models.Pick, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}
