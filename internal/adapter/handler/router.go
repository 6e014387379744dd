package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

// NewRouter wires all routes. Role checks happen here; ownership and state
// checks happen in the services.
func NewRouter(
	logger *slog.Logger,
	parser tokenParser,
	auth *AuthHandler,
	rooms *RoomHandler,
	bookings *BookingHandler,
	esewa *EsewaHandler,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", rooms.List)
			r.Get("/{roomID}", rooms.Get)

			r.Group(func(r chi.Router) {
				r.Use(Authenticate(parser))
				r.With(RequireRole(domain.RoleLandlord)).Post("/", rooms.Create)
				r.With(RequireRole(domain.RoleLandlord)).Get("/mine", rooms.ListMine)
				r.With(RequireRole(domain.RoleAdmin)).Post("/{roomID}/moderate", rooms.Moderate)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(Authenticate(parser))

			r.With(RequireRole(domain.RoleTenant)).Post("/cash", bookings.BookCash)
			r.With(RequireRole(domain.RoleTenant)).Get("/mine", bookings.ListTenant)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleLandlord))
				r.Get("/", bookings.ListLandlord)
				r.Get("/pending-cash", bookings.ListPendingCash)
				r.Post("/{bookingID}/approve", bookings.Approve)
				r.Post("/{bookingID}/reject", bookings.Reject)
			})
		})

		r.Route("/esewa", func(r chi.Router) {
			r.With(Authenticate(parser), RequireRole(domain.RoleTenant)).Post("/initiate", esewa.Initiate)
			// The completion redirect arrives from the gateway without our
			// auth headers; verification stands in for authentication here.
			r.Get("/complete", esewa.Complete)
		})
	})

	return r
}
