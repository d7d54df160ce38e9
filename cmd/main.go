package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/unipool/unipool-backend/internal/auth"
	"github.com/unipool/unipool-backend/internal/config"
	"github.com/unipool/unipool-backend/internal/db"
	"github.com/unipool/unipool-backend/internal/handlers"
	"github.com/unipool/unipool-backend/internal/middleware"
	"github.com/unipool/unipool-backend/internal/notify"
	"github.com/unipool/unipool-backend/internal/ride"
	"github.com/unipool/unipool-backend/internal/telemetry"
)

// newRouter wires every engine operation and view onto method+path
// patterns. Literal segments (upcoming, past, ...) take precedence over
// the {id} wildcard.
func newRouter(authHandler *handlers.AuthHandler, rideHandler *handlers.RideHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/otp", authHandler.RequestOtp)
	mux.HandleFunc("GET /api/auth/me", authHandler.GetProfile)

	mux.HandleFunc("POST /api/rides", rideHandler.Post)
	mux.HandleFunc("POST /api/rides/request", rideHandler.Request)
	mux.HandleFunc("GET /api/rides/upcoming", rideHandler.Upcoming)
	mux.HandleFunc("GET /api/rides/past", rideHandler.Past)
	mux.HandleFunc("GET /api/rides/requests", rideHandler.Pending)
	mux.HandleFunc("GET /api/rides/current", rideHandler.Current)
	mux.HandleFunc("GET /api/rides/{id}", rideHandler.Get)
	mux.HandleFunc("PATCH /api/rides/{id}", rideHandler.Patch)
	mux.HandleFunc("DELETE /api/rides/{id}", rideHandler.Delete)
	mux.HandleFunc("POST /api/rides/{id}/reserve", rideHandler.Reserve)
	mux.HandleFunc("DELETE /api/rides/{id}/reserve", rideHandler.CancelReservation)
	mux.HandleFunc("POST /api/rides/{id}/accept", rideHandler.Accept)
	mux.HandleFunc("POST /api/rides/{id}/status", rideHandler.UpdateStatus)
	mux.HandleFunc("DELETE /api/rides/{id}/recurrences", rideHandler.DeleteRecurring)
	mux.HandleFunc("GET /api/rides/{id}/capabilities", rideHandler.Capabilities)

	return mux
}

func main() {
	cfg := config.Load()

	var rideStore db.RideStore
	var userStore db.UserStore
	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		database := client.Database(cfg.MongoDB)
		rideStore = &db.MongoRideCollection{Collection: database.Collection("rides")}
		userStore = &db.MongoUserCollection{Collection: database.Collection("users")}
		log.Info("Connected to MongoDB")
	} else {
		rideStore = db.NewMemoryRideStore()
		userStore = db.NewMemoryUserStore()
		log.Warn("MONGO_URI not set, using in-memory stores")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}
	engine := ride.NewEngine(rideStore)
	notifier := notify.NewService()

	if cfg.MQTTBrokerURL != "" {
		consumer := telemetry.NewProgressConsumer(cfg.MQTTBrokerURL, engine)
		if err := consumer.Start(); err != nil {
			log.WithError(err).Warn("Progress telemetry consumer disabled")
		} else {
			defer consumer.Stop()
		}
	}

	authHandler := handlers.NewAuthHandler(authService, userStore, notifier)
	rideHandler := handlers.NewRideHandler(engine)
	mux := newRouter(authHandler, rideHandler)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimit := middleware.NewRateLimitMiddleware()
	handler := rateLimit.RateLimit(100, 60)(authMiddleware.Authenticate(mux))

	log.WithField("addr", cfg.ServerAddr).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, handler))
}
