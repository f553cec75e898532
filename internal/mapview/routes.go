package mapview

import (
	"net/http"

	"github.com/GeoFix/GeoFix-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	h := Handler{Store: mongoStore{}}

	r.Get("/features/bounds", h.FeaturesInBoundsHandler)
	r.Get("/allfeatures", h.AllFeaturesHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(20, 40))
		r.Post("/store", h.StoreFeaturesHandler)
		r.Post("/corrected", h.StoreCorrectedHandler)
	})

	return r
}
