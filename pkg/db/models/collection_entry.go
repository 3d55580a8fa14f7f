package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/pkg/enums"
)

// CollectionEntry records owned vs available quantity per user/card/finish.
// Quantity is owned by the collection-management service; this service only
// moves Available when listings reserve or release stock.
type CollectionEntry struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	CardID     string           `gorm:"column:card_id;not null" json:"card_id"`
	FinishType enums.FinishType `gorm:"column:finish_type;not null;default:normal" json:"finish_type"`
	Quantity   int              `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Available  int              `gorm:"column:available;not null;default:0" json:"available"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps the model onto the shared collection schema.
func (CollectionEntry) TableName() string {
	return "user_card_collection"
}
