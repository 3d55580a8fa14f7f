package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtgtracker/listing-backend/pkg/db/models"
	"github.com/mtgtracker/listing-backend/pkg/enums"
)

// Repository defines persistence operations for the card_listings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, listing *models.CardListing) (*models.CardListing, error)
	Get(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.CardListing, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID, forUpdate bool) (*models.CardListing, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filters UserListingFilters) ([]models.CardListing, error)
	ListByCard(ctx context.Context, cardID string, filters CardListingFilters) ([]models.CardListing, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetStatusIf(ctx context.Context, id, userID uuid.UUID, from, to enums.ListingStatus, soldAt *time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
