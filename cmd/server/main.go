package main

import (
	"log"

	"github.com/joho/godotenv"

	"contact-book-go/internal/config"
	"contact-book-go/internal/database"
	httpserver "contact-book-go/internal/http"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.Load()
	if err := database.Connect(cfg); err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatal(err)
	}

	r := httpserver.NewServer(cfg, database.DB)
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
