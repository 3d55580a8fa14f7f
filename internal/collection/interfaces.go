package collection

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtgtracker/listing-backend/pkg/db/models"
)

// Repository defines persistence operations on the shared collection table.
// This service never writes Quantity; ownership of the total stays with the
// collection-management service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, id, userID uuid.UUID, forUpdate bool) (*models.CollectionEntry, error)
	AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) error
}
