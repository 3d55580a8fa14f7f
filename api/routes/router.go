package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgtracker/listing-backend/api/controllers"
	"github.com/mtgtracker/listing-backend/api/middleware"
	"github.com/mtgtracker/listing-backend/internal/listings"
	"github.com/mtgtracker/listing-backend/pkg/config"
	"github.com/mtgtracker/listing-backend/pkg/logger"
	"github.com/mtgtracker/listing-backend/pkg/redis"
)

// Pinger is satisfied by the db, redis and pubsub clients.
type Pinger = controllers.HealthPinger

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger Pinger,
	redisClient *redis.Client,
	listingService listings.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	deps := map[string]Pinger{
		"database": dbPinger,
	}
	mutationLimit := middleware.MutationRateLimit(cfg.RateLimit, nil, logg)
	if redisClient != nil {
		deps["redis"] = redisClient
		mutationLimit = middleware.MutationRateLimit(cfg.RateLimit, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Route("/api/listing", func(r chi.Router) {
		// Public marketplace reads.
		r.Get("/user/{userID}", controllers.ListingListByUser(listingService, logg))
		r.Get("/card/{cardID}", controllers.ListingListByCard(listingService, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/user", controllers.ListingListMine(listingService, logg))

			r.Group(func(r chi.Router) {
				r.Use(mutationLimit)

				r.Post("/", controllers.ListingCreate(listingService, logg))
				r.Put("/{id}", controllers.ListingUpdate(listingService, logg))
				r.Post("/{id}/cancel", controllers.ListingCancel(listingService, logg))
				r.Post("/{id}/sold", controllers.ListingMarkSold(listingService, logg))
				r.Delete("/{id}", controllers.ListingDelete(listingService, logg))
			})
		})

		// Keep the single-listing read after /user so chi matches literals first.
		r.Get("/{id}", controllers.ListingGetByID(listingService, logg))
	})

	return r
}
