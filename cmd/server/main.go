package main // Entry point package

import (
	"context"
	"log" // Logging library
	"time"

	"github.com/joho/godotenv"    // Loads .env into the process environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/restaurant-order-gate/internal/config"
	"github.com/iliyamo/restaurant-order-gate/internal/database"
	"github.com/iliyamo/restaurant-order-gate/internal/handler"
	"github.com/iliyamo/restaurant-order-gate/internal/queue"
	"github.com/iliyamo/restaurant-order-gate/internal/ratelimit"
	"github.com/iliyamo/restaurant-order-gate/internal/repository"
	"github.com/iliyamo/restaurant-order-gate/internal/router"
	"github.com/iliyamo/restaurant-order-gate/internal/tenantstore"
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set the environment directly

	cfg := config.Load() // fails fast on missing JWT_SECRET and friends
	rateCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	tenants := repository.NewTenantRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := tenants.EnsureTable(ctx); err != nil {
		cancel()
		log.Fatalf("ensure restaurants table: %v", err)
	}
	cancel()

	// Rate-window store: shared Redis when available, in-process otherwise.
	var rateStore ratelimit.Store = ratelimit.NewMemoryStore()
	if rdb := config.NewRedisClient(); rdb != nil {
		rateStore = ratelimit.NewRedisStore(rdb)
		log.Printf("ratelimit: using redis window store")
	} else {
		log.Printf("ratelimit: redis unavailable, using in-process window store")
	}

	handles := tenantstore.NewRegistry(db)
	provisioner := tenantstore.NewProvisioner(db, cfg.BcryptCost)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterGate(e, router.Deps{
		Cfg:       cfg,
		RateCfg:   rateCfg,
		RateStore: rateStore,
		Tenants:   tenants,
		Handles:   handles,
		Auth:      handler.NewAuthHandler(cfg, tenants, handles),
		Tenant:    handler.NewTenantHandler(cfg, tenants, provisioner),
		Orders:    handler.NewOrderHandler(),
	})

	// Lifecycle event consumer; reconnects forever in the background.
	go func() {
		if err := queue.StartTenantConsumer(); err != nil {
			log.Printf("tenant-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
