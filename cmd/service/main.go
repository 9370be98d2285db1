package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/isabelxzhou/playlistsite2/internal/catalog"
)

func main() {
	ctx := context.Background()

	port := getenv("PORT", "3010")
	jwtSecret := []byte(getenv("JWT_SECRET", ""))
	if len(jwtSecret) == 0 {
		log.Fatal("catalog-service: JWT_SECRET is required")
	}
	tokenTTL := mustParseDuration("TOKEN_TTL", "24h")

	var store catalog.Store
	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatalf("catalog-service: pg: %v", err)
		}
		defer pool.Close()

		if err := catalog.AutoMigrate(ctx, pool); err != nil {
			log.Fatalf("catalog-service: migrate: %v", err)
		}
		store = catalog.NewPostgresStore(pool)
	} else {
		log.Printf("catalog-service: DATABASE_URL not set, using in-memory store")
		store = catalog.NewMemStore()
	}

	if err := catalog.SeedDefaultUsers(ctx, store,
		getenv("VIEWER_PASSWORD", ""),
		getenv("ADMIN_PASSWORD", ""),
	); err != nil {
		log.Fatalf("catalog-service: seed users: %v", err)
	}

	var rdb *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("catalog-service: redis: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	// The external recommender is opt-in; without a key the local
	// keyword scorer answers every request.
	var recommender catalog.Recommender
	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		recommender = catalog.NewOpenRouterRecommender(
			apiKey,
			getenv("OPENROUTER_URL", ""),
			getenv("OPENROUTER_MODEL", ""),
		)
	}

	srv := catalog.NewServer(catalog.ServerOptions{
		Store:       store,
		Redis:       rdb,
		Recommender: recommender,
		JWTSecret:   jwtSecret,
		TokenTTL:    tokenTTL,
	})

	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	log.Printf("catalog-service on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("catalog-service: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDuration(key, def string) time.Duration {
	raw := getenv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("catalog-service: invalid %s: %v", key, err)
	}
	return d
}
