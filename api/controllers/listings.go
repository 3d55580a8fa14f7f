package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/api/middleware"
	"github.com/mtgtracker/listing-backend/api/responses"
	"github.com/mtgtracker/listing-backend/api/validators"
	"github.com/mtgtracker/listing-backend/internal/listings"
	"github.com/mtgtracker/listing-backend/pkg/enums"
	pkgerrors "github.com/mtgtracker/listing-backend/pkg/errors"
	"github.com/mtgtracker/listing-backend/pkg/logger"
	"github.com/mtgtracker/listing-backend/pkg/pagination"
)

type createListingRequest struct {
	CardID       string  `json:"card_id" validate:"required"`
	CollectionID string  `json:"collection_id" validate:"required,uuid"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	FinishType   string  `json:"finish_type" validate:"required,oneof=normal foil etched"`
	Condition    string  `json:"condition" validate:"required,oneof=near_mint lightly_played moderately_played heavily_played damaged"`
	Language     string  `json:"language" validate:"omitempty,min=2,max=8"`
	ListingType  string  `json:"listing_type" validate:"required,oneof=physical online"`
	Marketplace  *string `json:"marketplace" validate:"omitempty,max=64"`
	PriceCents   int     `json:"price_cents" validate:"gte=0"`
	Currency     string  `json:"currency" validate:"omitempty,len=3"`
	Notes        *string `json:"notes" validate:"omitempty,max=1000"`
}

type updateListingRequest struct {
	Quantity    *int    `json:"quantity" validate:"omitempty,gt=0"`
	Condition   *string `json:"condition" validate:"omitempty,oneof=near_mint lightly_played moderately_played heavily_played damaged"`
	PriceCents  *int    `json:"price_cents" validate:"omitempty,gte=0"`
	Marketplace *string `json:"marketplace" validate:"omitempty,max=64"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

// ListingCreate reserves stock and opens a new listing for the caller.
func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		collectionID, err := uuid.Parse(payload.CollectionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid collection id"))
			return
		}

		listing, err := svc.Create(ctx, listings.CreateListingInput{
			UserID:       userID,
			CardID:       payload.CardID,
			CollectionID: collectionID,
			Quantity:     payload.Quantity,
			FinishType:   enums.FinishType(payload.FinishType),
			Condition:    enums.CardCondition(payload.Condition),
			Language:     payload.Language,
			ListingType:  enums.ListingType(payload.ListingType),
			Marketplace:  payload.Marketplace,
			PriceCents:   payload.PriceCents,
			Currency:     payload.Currency,
			Notes:        payload.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// ListingUpdate applies a partial update to an active listing.
func ListingUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := listings.UpdateListingInput{
			Quantity:    payload.Quantity,
			PriceCents:  payload.PriceCents,
			Marketplace: payload.Marketplace,
			Notes:       payload.Notes,
		}
		if payload.Condition != nil {
			condition := enums.CardCondition(*payload.Condition)
			input.Condition = &condition
		}

		listing, err := svc.Update(ctx, listingID, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingCancel closes an active listing and returns its stock.
func ListingCancel(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Cancel(ctx, listingID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingMarkSold flags an active listing as sold; the stock stays consumed.
func ListingMarkSold(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.MarkSold(ctx, listingID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingDelete removes a listing; an active one returns its stock first.
func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, listingID, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListingGetByID returns one listing. Public: no ownership requirement.
func ListingGetByID(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := parseListingID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.GetByID(ctx, listingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Optional owner scope: treat a mismatch like a missing row.
		if raw := validators.ParseQueryString(r, "user_id"); raw != "" {
			scopeID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id filter"))
				return
			}
			if listing.UserID != scopeID {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found"))
				return
			}
		}

		responses.WriteSuccess(w, listing)
	}
}

// ListingListMine returns the authenticated caller's listings, newest first.
func ListingListMine(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := userFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByUser(ctx, userID, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListingListByUser returns any user's listings, newest first.
func ListingListByUser(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}
		filters, err := userFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByUser(ctx, userID, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListingListByCard returns the marketplace view for one card, cheapest first.
func ListingListByCard(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		cardID := chi.URLParam(r, "cardID")
		filters, err := cardFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByCard(ctx, cardID, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return userID, nil
}

func parseListingID(r *http.Request) (uuid.UUID, error) {
	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id")
	}
	return listingID, nil
}

func userFiltersFromQuery(r *http.Request) (listings.UserListingFilters, error) {
	filters := listings.UserListingFilters{}

	if raw := validators.ParseQueryString(r, "status"); raw != "" {
		status, err := enums.ParseListingStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := validators.ParseQueryString(r, "listing_type"); raw != "" {
		listingType, err := enums.ParseListingType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing type filter")
		}
		filters.ListingType = &listingType
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return filters, err
	}
	filters.Limit = limit
	return filters, nil
}

func cardFiltersFromQuery(r *http.Request) (listings.CardListingFilters, error) {
	filters := listings.CardListingFilters{}

	if raw := validators.ParseQueryString(r, "status"); raw != "" {
		status, err := enums.ParseListingStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := validators.ParseQueryString(r, "listing_type"); raw != "" {
		listingType, err := enums.ParseListingType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing type filter")
		}
		filters.ListingType = &listingType
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return filters, err
	}
	filters.Limit = limit
	return filters, nil
}
