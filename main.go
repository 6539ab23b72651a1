package main

import (
	"context"
	"log"
	"os"
	"time"

	"rental-scheduling-server/routes"
	"rental-scheduling-server/services"
	"rental-scheduling-server/storage"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/robfig/cron/v3"
)

func main() {
	storage.LoadEnv()

	db, err := storage.InitializeDB()
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Storage: Postgres when configured, in-memory otherwise so the server
	// still runs in development.
	var store interface {
		services.PropertyStore
		services.BookingStore
		services.AvailabilityReader
		routes.BlockStore
	}
	if db != nil {
		store = storage.NewGormStore(db)
		log.Println("Connected to PostgreSQL")
	} else {
		store = storage.NewMemoryStore()
		log.Println("Warning: DB_CONNECTION_STRING not set, using in-memory store")
	}

	// Sync transport: redis pub/sub when configured, in-process bus otherwise.
	var bus services.Bus
	if client := storage.InitializeRedis(); client != nil {
		bus = services.NewRedisBus(client)
	} else {
		bus = services.NewMemoryBus()
		log.Println("Warning: REDIS_URL not set, sync events stay in-process")
	}

	syncSvc := services.NewSyncService(bus, 0)
	pricingSvc := services.NewPricingService()
	availabilitySvc := services.NewAvailabilityService(store, store)
	reservationSvc := services.NewReservationService(store, store, pricingSvc, syncSvc)

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-User-ID")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	routes.Configure(routes.Deps{
		Availability: availabilitySvc,
		Reservations: reservationSvc,
		Pricing:      pricingSvc,
		Properties:   store,
		Sync:         syncSvc,
		Blocks:       store,
	})
	routes.Register(app)

	// Pending requests hold their dates for 24h; the sweep cancels the ones
	// that lapsed.
	sched := cron.New()
	if _, err := sched.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := reservationSvc.ExpirePending(ctx); err != nil {
			log.Println("expire pending:", err)
		} else if n > 0 {
			log.Printf("expired %d pending reservations", n)
		}
	}); err != nil {
		log.Fatalf("cron: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
