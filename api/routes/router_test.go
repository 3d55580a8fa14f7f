package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mtgtracker/listing-backend/internal/listings"
	pkgAuth "github.com/mtgtracker/listing-backend/pkg/auth"
	"github.com/mtgtracker/listing-backend/pkg/config"
	"github.com/mtgtracker/listing-backend/pkg/db/models"
	"github.com/mtgtracker/listing-backend/pkg/enums"
	pkgerrors "github.com/mtgtracker/listing-backend/pkg/errors"
	"github.com/mtgtracker/listing-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubListingService struct {
	createFn     func(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error)
	getFn        func(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error)
	listByUserFn func(ctx context.Context, userID uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error)
	listByCardFn func(ctx context.Context, cardID string, filters listings.CardListingFilters) ([]models.CardListing, error)
}

func (s stubListingService) Create(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.CardListing{ID: uuid.New(), UserID: input.UserID, Status: enums.ListingStatusActive}, nil
}

func (s stubListingService) Update(ctx context.Context, listingID, userID uuid.UUID, input listings.UpdateListingInput) (*models.CardListing, error) {
	return &models.CardListing{ID: listingID, UserID: userID, Status: enums.ListingStatusActive}, nil
}

func (s stubListingService) Cancel(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	return &models.CardListing{ID: listingID, UserID: userID, Status: enums.ListingStatusCancelled}, nil
}

func (s stubListingService) MarkSold(ctx context.Context, listingID, userID uuid.UUID) (*models.CardListing, error) {
	return &models.CardListing{ID: listingID, UserID: userID, Status: enums.ListingStatusSold}, nil
}

func (s stubListingService) Delete(ctx context.Context, listingID, userID uuid.UUID) error {
	return nil
}

func (s stubListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error) {
	if s.getFn != nil {
		return s.getFn(ctx, listingID)
	}
	return &models.CardListing{ID: listingID, Status: enums.ListingStatusActive}, nil
}

func (s stubListingService) ListByUser(ctx context.Context, userID uuid.UUID, filters listings.UserListingFilters) ([]models.CardListing, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID, filters)
	}
	return []models.CardListing{}, nil
}

func (s stubListingService) ListByCard(ctx context.Context, cardID string, filters listings.CardListingFilters) ([]models.CardListing, error) {
	if s.listByCardFn != nil {
		return s.listByCardFn(ctx, cardID, filters)
	}
	return []models.CardListing{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, svc listings.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, svc)
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), stubListingService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	router := newTestRouter(testConfig(), stubListingService{})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready probe got %d", resp.Code)
	}
}

func TestPublicListingReadsNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig(), stubListingService{})

	paths := []string{
		"/api/listing/" + uuid.NewString(),
		"/api/listing/user/" + uuid.NewString(),
		"/api/listing/card/scryfall-1234",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for public read %s got %d", path, resp.Code)
		}
	}
}

func TestMutationsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubListingService{})

	id := uuid.NewString()
	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/listing/"},
		{http.MethodGet, "/api/listing/user"},
		{http.MethodPut, "/api/listing/" + id},
		{http.MethodPost, "/api/listing/" + id + "/cancel"},
		{http.MethodPost, "/api/listing/" + id + "/sold"},
		{http.MethodDelete, "/api/listing/" + id},
	}
	for _, tc := range requests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s %s without token got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestCreateAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()
	var captured listings.CreateListingInput
	svc := stubListingService{
		createFn: func(ctx context.Context, input listings.CreateListingInput) (*models.CardListing, error) {
			captured = input
			return &models.CardListing{ID: uuid.New(), UserID: input.UserID, Status: enums.ListingStatusActive}, nil
		},
	}
	router := newTestRouter(cfg, svc)

	body := `{"collection_id":"` + uuid.NewString() + `","card_id":"scryfall-1234","quantity":2,"finish_type":"normal","condition":"near_mint","listing_type":"online","price_cents":1500}`
	req := httptest.NewRequest(http.MethodPost, "/api/listing/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for create got %d body=%s", resp.Code, resp.Body.String())
	}
	if captured.UserID != userID {
		t.Fatalf("expected service to receive token user %s got %s", userID, captured.UserID)
	}
}

func TestCancelSurfacesStateConflict(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubListingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/listing/"+uuid.NewString()+"/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cancel got %d", resp.Code)
	}
}

func TestGetByIDMapsNotFound(t *testing.T) {
	svc := stubListingService{
		getFn: func(ctx context.Context, listingID uuid.UUID) (*models.CardListing, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		},
	}
	router := newTestRouter(testConfig(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/listing/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing listing got %d", resp.Code)
	}
}
