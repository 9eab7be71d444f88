package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/checkout"
	h "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/postgres"
	"github.com/fjod/go_shop/internal/pricing"
	"github.com/fjod/go_shop/internal/promo"
	"github.com/fjod/go_shop/internal/settings"
)

type Config struct {
	HTTPPort         string
	RedisAddr        string
	DB               postgres.Credentials
	ShippingFlatRate decimal.Decimal
	Currency         string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
}

func loadConfig() *Config {
	shipping, err := decimal.NewFromString(getEnv("SHIPPING_FLAT_RATE", "0"))
	if err != nil {
		log.Fatalf("invalid SHIPPING_FLAT_RATE: %v", err)
	}
	return &Config{
		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		DB: postgres.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "shop"),
			Password:          getEnv("DB_PASSWORD", "shop"),
			DBName:            getEnv("DB_NAME", "shop"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./migrations"),
		},
		ShippingFlatRate: shipping,
		Currency:         getEnv("CURRENCY", "USD"),
		RequestTimeout:   30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	db, err := postgres.Open(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.DB.MigrationsDirPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	catalogRepo := catalog.NewRepository(db)
	promoRepo := promo.NewPostgresRepository(db)
	taxService := settings.NewService(
		settings.NewPostgresStore(db),
		settings.NewRedisCache(redisClient),
	)

	engine := pricing.NewEngine(catalogRepo, promoRepo, taxService, pricing.Config{
		ShippingFlatRate: cfg.ShippingFlatRate,
		Currency:         cfg.Currency,
	})

	cartService := cart.NewService(cart.NewPostgresRepository(db), engine)
	checkoutService := checkout.NewService(engine, checkout.NewRepository(db))

	productHandler := h.NewProductHandler(catalogRepo, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(cartService, engine, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(checkoutService, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.HeaderAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/calculate", cartHandler.Calculate)
			r.Post("/promo", cartHandler.ApplyPromo)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.PlaceOrder)
		r.Post("/quotations", checkoutHandler.CreateQuotation)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Post("/", ordersHandler.CreateAdminOrder)
			r.Patch("/{order_id}/status", ordersHandler.UpdateStatus)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "go_shop-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
}
