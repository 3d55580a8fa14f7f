package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/api/middleware"
	"github.com/mtgtracker/listing-backend/internal/listings"
	"github.com/mtgtracker/listing-backend/pkg/db/models"
	"github.com/mtgtracker/listing-backend/pkg/enums"
	pkgerrors "github.com/mtgtracker/listing-backend/pkg/errors"
)

type stubListingService struct {
	createFn   func(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error)
	updateFn   func(ctx context.Context, listingID, userID uuid.UUID, input listings.UpdateListingInput) (*models.CardListing, error)
	cancelFn   func(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error)
	markSoldFn func(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error)
	deleteFn   func(ctx context.Context, listingID, userID uuid.UUID) error
	getFn      func(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error)
	byUserFn   func(ctx context.Context, userID uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error)
	byCardFn   func(ctx context.Context, cardID string, filters listings.CardListingFilters) ([]models.CardListing, error)
}

func (s stubListingService) Create(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected create")
}

func (s stubListingService) Update(ctx context.Context, listingID, userID uuid.UUID, input listings.UpdateListingInput) (*models.CardListing, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, listingID, userID, input)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected update")
}

func (s stubListingService) Cancel(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, listingID, userID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected cancel")
}

func (s stubListingService) MarkSold(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	if s.markSoldFn != nil {
		return s.markSoldFn(ctx, listingID, userID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected mark sold")
}

func (s stubListingService) Delete(ctx context.Context, listingID, userID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, listingID, userID)
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "unexpected delete")
}

func (s stubListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error) {
	if s.getFn != nil {
		return s.getFn(ctx, listingID)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected get")
}

func (s stubListingService) ListByUser(ctx context.Context, userID uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error) {
	if s.byUserFn != nil {
		return s.byUserFn(ctx, userID, filters)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected list by user")
}

func (s stubListingService) ListByCard(ctx context.Context, cardID string, filters listings.CardListingFilters) ([]models.CardListing, error) {
	if s.byCardFn != nil {
		return s.byCardFn(ctx, cardID, filters)
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "unexpected list by card")
}

func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withListingParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestListingCreateSuccess(t *testing.T) {
	userID := uuid.New()
	collectionID := uuid.New()
	created := &models.CardListing{ID: uuid.New(), UserID: userID, Status: enums.ListingStatusActive}

	var captured listings.CreateListingInput
	handler := ListingCreate(stubListingService{
		createFn: func(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error) {
			captured = input
			return created, nil
		},
	}, nil)

	body := `{"collection_id":"` + collectionID.String() + `","card_id":"scryfall-1234","quantity":3,"finish_type":"foil","condition":"near_mint","listing_type":"online","price_cents":2500,"currency":"usd"}`
	req := authedRequest(http.MethodPost, "/api/listing", body, userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", resp.Code, resp.Body.String())
	}
	if captured.UserID != userID || captured.CollectionID != collectionID {
		t.Fatalf("unexpected input captured: %+v", captured)
	}
	if captured.FinishType != enums.FinishTypeFoil {
		t.Fatalf("unexpected finish: %s", captured.FinishType)
	}

	var data struct {
		ID uuid.UUID `json:"id"`
	}
	decodeEnvelope(t, resp, &data)
	if data.ID != created.ID {
		t.Fatalf("unexpected listing id: %s", data.ID)
	}
}

func TestListingCreateRejectsBadPayload(t *testing.T) {
	handler := ListingCreate(stubListingService{}, nil)

	cases := map[string]string{
		"zero quantity":  `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":0,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":100}`,
		"bad finish":     `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":1,"finish_type":"holo","condition":"near_mint","listing_type":"online","price_cents":100}`,
		"negative price": `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":1,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":-5}`,
		"unknown field":  `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":1,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":100,"surprise":true}`,
	}
	for name, body := range cases {
		req := authedRequest(http.MethodPost, "/api/listing", body, uuid.New())
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d body=%s", name, resp.Code, resp.Body.String())
		}
	}
}

func TestListingCreateMissingUserContext(t *testing.T) {
	handler := ListingCreate(stubListingService{}, nil)
	body := `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":1,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":100}`
	req := httptest.NewRequest(http.MethodPost, "/api/listing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListingCreateInsufficientInventory(t *testing.T) {
	handler := ListingCreate(stubListingService{
		createFn: func(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory, "only 1 available")
		},
	}, nil)

	body := `{"collection_id":"` + uuid.NewString() + `","card_id":"c","quantity":4,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":100}`
	req := authedRequest(http.MethodPost, "/api/listing", body, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "INSUFFICIENT_INVENTORY") {
		t.Fatalf("expected inventory code in body: %s", resp.Body.String())
	}
}

func TestListingUpdatePassesPartialFields(t *testing.T) {
	userID := uuid.New()
	listingID := uuid.New()

	var captured listings.UpdateListingInput
	handler := ListingUpdate(stubListingService{
		updateFn: func(ctx context.Context, id, uid uuid.UUID, input listings.UpdateListingInput) (*models.CardListing, error) {
			if id != listingID || uid != userID {
				t.Fatalf("unexpected ids: %s %s", id, uid)
			}
			captured = input
			return &models.CardListing{ID: id, UserID: uid, Status: enums.ListingStatusActive}, nil
		},
	}, nil)

	req := authedRequest(http.MethodPut, "/api/listing/"+listingID.String(), `{"quantity":5,"price_cents":900}`, userID)
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if captured.Quantity == nil || *captured.Quantity != 5 {
		t.Fatalf("expected quantity pointer 5, got %+v", captured.Quantity)
	}
	if captured.PriceCents == nil || *captured.PriceCents != 900 {
		t.Fatalf("expected price pointer 900, got %+v", captured.PriceCents)
	}
	if captured.Condition != nil || captured.Notes != nil {
		t.Fatalf("expected untouched fields to stay nil: %+v", captured)
	}
}

func TestListingUpdateRejectsBadID(t *testing.T) {
	handler := ListingUpdate(stubListingService{}, nil)
	req := authedRequest(http.MethodPut, "/api/listing/not-a-uuid", `{"quantity":5}`, uuid.New())
	req = withListingParam(req, "id", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListingCancelStateConflict(t *testing.T) {
	listingID := uuid.New()
	handler := ListingCancel(stubListingService{
		cancelFn: func(ctx context.Context, id, uid uuid.UUID) (*models.CardListing, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not active")
		},
	}, nil)

	req := authedRequest(http.MethodPost, "/api/listing/"+listingID.String()+"/cancel", "", uuid.New())
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestListingMarkSoldSuccess(t *testing.T) {
	userID := uuid.New()
	listingID := uuid.New()
	handler := ListingMarkSold(stubListingService{
		markSoldFn: func(ctx context.Context, id, uid uuid.UUID) (*models.CardListing, error) {
			return &models.CardListing{ID: id, UserID: uid, Status: enums.ListingStatusSold}, nil
		},
	}, nil)

	req := authedRequest(http.MethodPost, "/api/listing/"+listingID.String()+"/sold", "", userID)
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var data struct {
		Status enums.ListingStatus `json:"status"`
	}
	decodeEnvelope(t, resp, &data)
	if data.Status != enums.ListingStatusSold {
		t.Fatalf("expected sold status got %s", data.Status)
	}
}

func TestListingDeleteSuccess(t *testing.T) {
	listingID := uuid.New()
	called := false
	handler := ListingDelete(stubListingService{
		deleteFn: func(ctx context.Context, id, uid uuid.UUID) error {
			called = true
			return nil
		},
	}, nil)

	req := authedRequest(http.MethodDelete, "/api/listing/"+listingID.String(), "", uuid.New())
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected delete to reach the service")
	}
}

func TestListingGetByIDNotFound(t *testing.T) {
	listingID := uuid.New()
	handler := ListingGetByID(stubListingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.CardListing, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listing/"+listingID.String(), nil)
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListingGetByIDUserScopeMismatch(t *testing.T) {
	listingID := uuid.New()
	owner := uuid.New()
	handler := ListingGetByID(stubListingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.CardListing, error) {
			return &models.CardListing{ID: id, UserID: owner, Status: enums.ListingStatusActive}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listing/"+listingID.String()+"?user_id="+uuid.NewString(), nil)
	req = withListingParam(req, "id", listingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign owner scope got %d", resp.Code)
	}

	scoped := httptest.NewRequest(http.MethodGet, "/api/listing/"+listingID.String()+"?user_id="+owner.String(), nil)
	scoped = withListingParam(scoped, "id", listingID.String())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, scoped)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for matching owner scope got %d", resp.Code)
	}
}

func TestListingListMineAppliesQueryFilters(t *testing.T) {
	userID := uuid.New()
	var captured listings.UserListingFilters
	handler := ListingListMine(stubListingService{
		byUserFn: func(ctx context.Context, uid uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error) {
			if uid != userID {
				t.Fatalf("unexpected user: %s", uid)
			}
			captured = filters
			return []models.CardListing{{ID: uuid.New(), UserID: uid}}, nil
		},
	}, nil)

	req := authedRequest(http.MethodGet, "/api/listing/user?status=sold&listing_type=online&limit=10", "", userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if captured.Status == nil || *captured.Status != enums.ListingStatusSold {
		t.Fatalf("expected sold status filter got %+v", captured.Status)
	}
	if captured.ListingType == nil || *captured.ListingType != enums.ListingTypeOnline {
		t.Fatalf("expected online type filter got %+v", captured.ListingType)
	}
	if captured.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", captured.Limit)
	}
}

func TestListingListMineRejectsBadStatus(t *testing.T) {
	handler := ListingListMine(stubListingService{}, nil)
	req := authedRequest(http.MethodGet, "/api/listing/user?status=archived", "", uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListingListByUserPublic(t *testing.T) {
	targetUser := uuid.New()
	handler := ListingListByUser(stubListingService{
		byUserFn: func(ctx context.Context, uid uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error) {
			if uid != targetUser {
				t.Fatalf("unexpected user: %s", uid)
			}
			return []models.CardListing{}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listing/user/"+targetUser.String(), nil)
	req = withListingParam(req, "userID", targetUser.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListingListByCardForwardsCardID(t *testing.T) {
	var captured string
	handler := ListingListByCard(stubListingService{
		byCardFn: func(ctx context.Context, cardID string, filters listings.CardListingFilters) ([]models.CardListing, error) {
			captured = cardID
			return []models.CardListing{}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listing/card/scryfall-9876", nil)
	req = withListingParam(req, "cardID", "scryfall-9876")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured != "scryfall-9876" {
		t.Fatalf("unexpected card id: %s", captured)
	}
}
