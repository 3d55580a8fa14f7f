package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/mtgtracker/listing-backend/pkg/db"
	"github.com/mtgtracker/listing-backend/pkg/db/models"
	"github.com/mtgtracker/listing-backend/pkg/enums"
	"github.com/mtgtracker/listing-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, listing *models.CardListing) (*models.CardListing, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.CardListing, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = dbpkg.LockForUpdate(query)
	}

	var listing models.CardListing
	if err := query.Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) GetForUser(ctx context.Context, id, userID uuid.UUID, forUpdate bool) (*models.CardListing, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = dbpkg.LockForUpdate(query)
	}

	var listing models.CardListing
	err := query.
		Where("id = ? AND user_id = ?", id, userID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filters UserListingFilters) ([]models.CardListing, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ListingType != nil {
		query = query.Where("listing_type = ?", *filters.ListingType)
	}

	var rows []models.CardListing
	err := query.
		Order("listed_at DESC").
		Limit(pagination.NormalizeLimit(filters.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByCard returns the marketplace view for one card, cheapest first.
// Status defaults to active so terminal listings never surface to buyers.
func (r *repository) ListByCard(ctx context.Context, cardID string, filters CardListingFilters) ([]models.CardListing, error) {
	status := enums.ListingStatusActive
	if filters.Status != nil {
		status = *filters.Status
	}

	query := r.db.WithContext(ctx).
		Where("card_id = ? AND status = ?", cardID, status)
	if filters.ListingType != nil {
		query = query.Where("listing_type = ?", *filters.ListingType)
	}

	var rows []models.CardListing
	err := query.
		Order("price_cents ASC").
		Limit(pagination.NormalizeLimit(filters.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CardListing{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetStatusIf transitions status only when the current value matches from,
// and reports how many rows changed so callers can detect lost races.
func (r *repository) SetStatusIf(ctx context.Context, id, userID uuid.UUID, from, to enums.ListingStatus, soldAt *time.Time) (int64, error) {
	updates := map[string]any{"status": to}
	if soldAt != nil {
		updates["sold_at"] = *soldAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.CardListing{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CardListing{}).Error
}
