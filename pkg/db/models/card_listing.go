package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/pkg/enums"
)

// CardListing is a marketplace offer reserving quantity from a CollectionEntry.
type CardListing struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	CardID       string              `gorm:"column:card_id;not null" json:"card_id"`
	CollectionID uuid.UUID           `gorm:"column:collection_id;type:uuid;not null" json:"collection_id"`
	Quantity     int                 `gorm:"column:quantity;not null" json:"quantity"`
	FinishType   enums.FinishType    `gorm:"column:finish_type;not null" json:"finish_type"`
	Condition    enums.CardCondition `gorm:"column:condition;not null" json:"condition"`
	Language     string              `gorm:"column:language;not null;default:en" json:"language"`
	ListingType  enums.ListingType   `gorm:"column:listing_type;not null" json:"listing_type"`
	Marketplace  *string             `gorm:"column:marketplace" json:"marketplace,omitempty"`
	PriceCents   int                 `gorm:"column:price_cents;not null" json:"price_cents"`
	Currency     string              `gorm:"column:currency;not null;default:USD" json:"currency"`
	Status       enums.ListingStatus `gorm:"column:status;not null;default:active" json:"status"`
	Notes        *string             `gorm:"column:notes" json:"notes,omitempty"`
	ListedAt     time.Time           `gorm:"column:listed_at;autoCreateTime" json:"listed_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	SoldAt       *time.Time          `gorm:"column:sold_at" json:"sold_at,omitempty"`
}

// TableName keeps the legacy table name for wire compatibility.
func (CardListing) TableName() string {
	return "card_listings"
}
