package listings

import (
	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/pkg/enums"
)

// CreateListingInput carries everything needed to reserve stock and open a listing.
type CreateListingInput struct {
	UserID       uuid.UUID
	CardID       string
	CollectionID uuid.UUID
	Quantity     int
	FinishType   enums.FinishType
	Condition    enums.CardCondition
	Language     string
	ListingType  enums.ListingType
	Marketplace  *string
	PriceCents   int
	Currency     string
	Notes        *string
}

// UpdateListingInput is a partial update; nil fields are left untouched.
type UpdateListingInput struct {
	Quantity    *int
	Condition   *enums.CardCondition
	PriceCents  *int
	Marketplace *string
	Notes       *string
}

// UserListingFilters narrow the seller's own listing feed.
type UserListingFilters struct {
	Status      *enums.ListingStatus
	ListingType *enums.ListingType
	Limit       int
}

// CardListingFilters narrow the marketplace view for a single card.
type CardListingFilters struct {
	Status      *enums.ListingStatus
	ListingType *enums.ListingType
	Limit       int
}
