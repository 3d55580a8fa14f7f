package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtgtracker/listing-backend/internal/collection"
	"github.com/mtgtracker/listing-backend/pkg/db/models"
	"github.com/mtgtracker/listing-backend/pkg/enums"
	pkgerrors "github.com/mtgtracker/listing-backend/pkg/errors"
	"github.com/mtgtracker/listing-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the listing lifecycle built on the reservation protocol.
type Service interface {
	Create(ctx context.Context, input CreateListingInput) (*models.CardListing, error)
	Update(ctx context.Context, listingID, userID uuid.UUID, input UpdateListingInput) (*models.CardListing, error)
	Cancel(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error)
	MarkSold(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error)
	Delete(ctx context.Context, listingID, userID uuid.UUID) error
	GetByID(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filters UserListingFilters) ([]models.CardListing, error)
	ListByCard(ctx context.Context, cardID string, filters CardListingFilters) ([]models.CardListing, error)
}

type service struct {
	repo        Repository
	collections collection.Repository
	tx          txRunner
	outbox      outboxPublisher
}

// ListingEvent is the payload emitted for every lifecycle transition.
type ListingEvent struct {
	ListingID    uuid.UUID           `json:"listing_id"`
	UserID       uuid.UUID           `json:"user_id"`
	CardID       string              `json:"card_id"`
	CollectionID uuid.UUID           `json:"collection_id"`
	Quantity     int                 `json:"quantity"`
	PriceCents   int                 `json:"price_cents"`
	Currency     string              `json:"currency"`
	Status       enums.ListingStatus `json:"status"`
}

// NewService builds a listing service with the required dependencies.
func NewService(repo Repository, collections collection.Repository, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if collections == nil {
		return nil, fmt.Errorf("collection repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:        repo,
		collections: collections,
		tx:          tx,
		outbox:      ob,
	}, nil
}

// Create reserves stock from the backing collection entry and opens a listing.
// Lock order is listing before collection entry everywhere in this file; create
// has no listing row yet so the entry lock comes first by construction.
func (s *service) Create(ctx context.Context, input CreateListingInput) (*models.CardListing, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	var listingID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		collections := s.collections.WithTx(tx)

		entry, err := collections.Get(ctx, input.CollectionID, input.UserID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection entry")
		}
		if entry.FinishType != input.FinishType {
			return pkgerrors.New(pkgerrors.CodeFinishMismatch, "finish type does not match collection entry")
		}
		if entry.Available < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough available cards")
		}

		if err := collections.AdjustAvailable(ctx, entry.ID, -input.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
		}

		listing := &models.CardListing{
			UserID:       input.UserID,
			CardID:       input.CardID,
			CollectionID: input.CollectionID,
			Quantity:     input.Quantity,
			FinishType:   input.FinishType,
			Condition:    input.Condition,
			Language:     input.Language,
			ListingType:  input.ListingType,
			Marketplace:  input.Marketplace,
			PriceCents:   input.PriceCents,
			Currency:     input.Currency,
			Status:       enums.ListingStatusActive,
			Notes:        input.Notes,
		}
		if _, err := repo.Insert(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert listing")
		}
		listingID = listing.ID

		return s.emit(ctx, tx, enums.OutboxEventListingCreated, listing)
	})
	if err != nil {
		return nil, err
	}

	// Re-read outside the transaction so DB-assigned timestamps come back canonical.
	return s.reload(ctx, listingID)
}

// Update adjusts an active listing; a quantity change moves the difference
// through the backing collection entry.
func (s *service) Update(ctx context.Context, listingID, userID uuid.UUID, input UpdateListingInput) (*models.CardListing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		collections := s.collections.WithTx(tx)

		listing, err := repo.GetForUser(ctx, listingID, userID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing.Status != enums.ListingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "can only update active listings")
		}

		updates := map[string]any{}
		if input.Quantity != nil && *input.Quantity != listing.Quantity {
			diff := *input.Quantity - listing.Quantity

			entry, err := collections.Get(ctx, listing.CollectionID, userID, true)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "collection entry not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection entry")
			}
			if diff > 0 && entry.Available < diff {
				return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough available cards")
			}
			// diff < 0 releases stock back to available.
			if err := collections.AdjustAvailable(ctx, entry.ID, -diff); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust reservation")
			}
			updates["quantity"] = *input.Quantity
			listing.Quantity = *input.Quantity
		}
		if input.Condition != nil {
			updates["condition"] = *input.Condition
			listing.Condition = *input.Condition
		}
		if input.PriceCents != nil {
			updates["price_cents"] = *input.PriceCents
			listing.PriceCents = *input.PriceCents
		}
		if input.Marketplace != nil {
			updates["marketplace"] = *input.Marketplace
			listing.Marketplace = input.Marketplace
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
			listing.Notes = input.Notes
		}

		if err := repo.UpdateFields(ctx, listing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
		}

		return s.emit(ctx, tx, enums.OutboxEventListingUpdated, listing)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, listingID)
}

// Cancel closes an active listing and returns its reserved stock.
func (s *service) Cancel(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		collections := s.collections.WithTx(tx)

		listing, err := repo.GetForUser(ctx, listingID, userID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing.Status != enums.ListingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "can only cancel active listings")
		}

		if _, err := collections.Get(ctx, listing.CollectionID, userID, true); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "collection entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection entry")
		}
		if err := collections.AdjustAvailable(ctx, listing.CollectionID, listing.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "return stock")
		}

		affected, err := repo.SetStatusIf(ctx, listing.ID, userID, enums.ListingStatusActive, enums.ListingStatusCancelled, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel listing")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "can only cancel active listings")
		}
		listing.Status = enums.ListingStatusCancelled

		return s.emit(ctx, tx, enums.OutboxEventListingCancelled, listing)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, listingID)
}

// MarkSold consumes the reservation permanently. Available is deliberately
// not touched; the units are gone from the seller's pool and any reduction
// of the owned total belongs to the collection-management service.
func (s *service) MarkSold(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now()
		affected, err := repo.SetStatusIf(ctx, listingID, userID, enums.ListingStatusActive, enums.ListingStatusSold, &now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
		}
		if affected == 0 {
			// Zero rows means either a missing listing or a terminal status.
			if _, err := repo.GetForUser(ctx, listingID, userID, false); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "can only sell active listings")
		}

		listing, err := repo.GetForUser(ctx, listingID, userID, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		return s.emit(ctx, tx, enums.OutboxEventListingSold, listing)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, listingID)
}

// Delete removes the listing row; an active listing first returns its stock.
func (s *service) Delete(ctx context.Context, listingID, userID uuid.UUID) error {
	if listingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		collections := s.collections.WithTx(tx)

		listing, err := repo.GetForUser(ctx, listingID, userID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}

		if listing.Status == enums.ListingStatusActive {
			if _, err := collections.Get(ctx, listing.CollectionID, userID, true); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "collection entry not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection entry")
			}
			if err := collections.AdjustAvailable(ctx, listing.CollectionID, listing.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "return stock")
			}
		}

		if err := repo.Delete(ctx, listing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
		}

		return s.emit(ctx, tx, enums.OutboxEventListingDeleted, listing)
	})
}

func (s *service) GetByID(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.Get(ctx, listingID, false)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, filters UserListingFilters) ([]models.CardListing, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user listings")
	}
	return rows, nil
}

func (s *service) ListByCard(ctx context.Context, cardID string, filters CardListingFilters) ([]models.CardListing, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card id required")
	}
	rows, err := s.repo.ListByCard(ctx, cardID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list card listings")
	}
	return rows, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, listing *models.CardListing) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateListing,
		AggregateID:   listing.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: listing.UserID},
		Data: ListingEvent{
			ListingID:    listing.ID,
			UserID:       listing.UserID,
			CardID:       listing.CardID,
			CollectionID: listing.CollectionID,
			Quantity:     listing.Quantity,
			PriceCents:   listing.PriceCents,
			Currency:     listing.Currency,
			Status:       listing.Status,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue listing event")
	}
	return nil
}

func (s *service) reload(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error) {
	listing, err := s.repo.Get(ctx, listingID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
	}
	return listing, nil
}

func validateCreateInput(input *CreateListingInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.CardID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "card id required")
	}
	if input.CollectionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection id required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.FinishType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid finish type")
	}
	if !input.Condition.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	if !input.ListingType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid listing type")
	}
	if input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Language == "" {
		input.Language = "en"
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if len(input.Currency) != 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter code")
	}
	input.Currency = strings.ToUpper(input.Currency)
	return nil
}

func validateUpdateInput(input UpdateListingInput) error {
	if input.Quantity != nil && *input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Condition != nil && !input.Condition.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return nil
}
