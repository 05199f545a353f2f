package main

import (
	"context"
	"log"
	"net/http"

	webAdapter "gstbilling/internal/adapters/web"
	"gstbilling/internal/config"
	"gstbilling/internal/core"
	"gstbilling/internal/db"
	"gstbilling/internal/store/memory"
	"gstbilling/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var store core.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		log.Println("DATABASE_URL not set, using in-memory store")
		store = memory.New()
	}

	handler := webAdapter.NewHandler(store, cfg.AllowedOrigins, cfg.JWTSecret)

	log.Printf("server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
