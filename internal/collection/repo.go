package collection

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/mtgtracker/listing-backend/pkg/db"
	"github.com/mtgtracker/listing-backend/pkg/db/models"
)

// ErrAvailableOutOfRange reports that an adjustment would push available
// below zero or above the owned quantity. Callers validate under lock first,
// so hitting this means the invariant was already broken.
var ErrAvailableOutOfRange = errors.New("available adjustment out of range")

type repository struct {
	db *gorm.DB
}

// NewRepository builds a collection repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, id, userID uuid.UUID, forUpdate bool) (*models.CollectionEntry, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = dbpkg.LockForUpdate(query)
	}

	var entry models.CollectionEntry
	err := query.
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AdjustAvailable moves units between available and reserved. The guard on
// the WHERE clause keeps 0 <= available <= quantity even if a caller slips
// past the locked validation.
func (r *repository) AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CollectionEntry{}).
		Where("id = ?", id).
		Where("available + ? >= 0", delta).
		Where("available + ? <= quantity", delta).
		Update("available", gorm.Expr("available + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAvailableOutOfRange
	}
	return nil
}
