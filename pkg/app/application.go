package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"onehotel/internal/health"
	reservationhandler "onehotel/internal/reservations/handler"
	reservationservice "onehotel/internal/reservations/service"
	reservationvalidator "onehotel/internal/reservations/validator"
	roomhandler "onehotel/internal/rooms/handler"
	roomservice "onehotel/internal/rooms/service"
	roomvalidator "onehotel/internal/rooms/validator"
	"onehotel/pkg/clock"
	"onehotel/pkg/config"
	"onehotel/pkg/events"
	"onehotel/pkg/middleware"
	"onehotel/pkg/tracing"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	publisher        events.Publisher
	shutdownTracing  func(context.Context) error
	healthHandler    http.Handler
	appHttpHandler   http.Handler
}

// Dependencies are the pieces an Application is assembled from.
type Dependencies struct {
	Stores          Stores
	Publisher       events.Publisher
	Clock           clock.Clock
	ShutdownTracing func(context.Context) error
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(deps Dependencies) {
	a.publisher = deps.Publisher
	if a.publisher == nil {
		a.publisher = events.NewNoopPublisher()
	}
	a.shutdownTracing = deps.ShutdownTracing
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem(a.cfg.Location)
	}

	a.setHealthHandler()
	a.setAppHandler(deps)
	a.setAppServer()
}

// Handler returns the fully wrapped HTTP handler, health endpoints included.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	health.NewHandler(a.cfg.Client, a.cfg.Log).RegisterRoutes(healthRouter)

	a.healthHandler = middleware.Chain(healthRouter,
		middleware.Recovery(a.cfg.Log),
		middleware.RequestLogging(a.cfg.Log),
	)
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(deps Dependencies) {
	cfg := a.cfg

	reservationRules := reservationvalidator.DateRules{
		MaxDurationDays: cfg.MaxReservationDays,
		MinAdvanceDays:  cfg.MinAdvanceDays,
		MaxAdvanceDays:  cfg.MaxAdvanceDays,
	}

	rooms := roomservice.NewRoomService(
		deps.Stores.Rooms,
		roomvalidator.NewRoomValidator(cfg.Log),
		deps.Stores.Reservations,
		a.publisher,
		deps.Clock,
		cfg,
	)
	reservations := reservationservice.NewReservationService(
		deps.Stores.Reservations,
		deps.Stores.Rooms,
		reservationvalidator.NewReservationValidator(reservationRules, cfg.Log),
		a.publisher,
		deps.Clock,
		cfg,
	)
	cfg.Log.Info("Services initialized",
		"store_driver", cfg.StoreDriver,
		"max_reservation_days", reservationRules.MaxDurationDays,
		"min_advance_days", reservationRules.MinAdvanceDays,
		"max_advance_days", reservationRules.MaxAdvanceDays,
	)

	appRouter := httprouter.New()
	roomhandler.NewRoomHandler(rooms, cfg.Log).RegisterRoutes(appRouter)
	reservationhandler.NewReservationHandler(reservations, cfg.Log).RegisterRoutes(appRouter)

	if cfg.IdempotencyBackend == config.IdempotencyRedis && cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(cfg.Client.Redis, cfg.IdempotencyTTL, cfg.Log)
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		middleware.ClientIP,
		cfg.Log,
	)

	// Order: Recovery → Logging → Tracing → MaxSize → ContentType → Signature → RateLimit → Timeout → Idempotency → Router
	mws := []middleware.Middleware{
		middleware.Recovery(cfg.Log),
		middleware.RequestLogging(cfg.Log),
		middleware.Tracing(tracing.Tracer("onehotel/http")),
		middleware.MaxRequestSize(int64(cfg.MaxRequestSize)),
		middleware.ContentTypeValidation(cfg.Log),
	}
	if cfg.APISigningSecret != "" {
		mws = append(mws, middleware.RequestSignature(cfg.APISigningSecret, cfg.Log))
		cfg.Log.Info("Request signature verification enabled")
	}
	mws = append(mws,
		middleware.RateLimit(a.rateLimiter),
		middleware.RequestTimeout(cfg.RequestTimeout),
		middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader),
	)

	a.appHttpHandler = middleware.Chain(appRouter, mws...)
	cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.Shutdown()
	}
}

// Shutdown stops background workers, drains the HTTP server, then flushes
// events and traces.
func (a *Application) Shutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.cfg.Log.Error("Failed to close event publisher", "error", err)
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			a.cfg.Log.Error("Failed to flush traces", "error", err)
		}
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
