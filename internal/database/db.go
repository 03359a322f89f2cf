package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"contact-book-go/internal/config"
	"contact-book-go/internal/models"
)

var DB *gorm.DB

// Connect opens the database selected by DB_DRIVER. Postgres reads its DSN
// pieces from the environment; sqlite creates the data directory on demand.
func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		dbname := os.Getenv("DB_NAME")
		sslmode := os.Getenv("DB_SSLMODE")

		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode,
		)
		dialector = postgres.Open(dsn)
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.DBDriver, err)
	}

	log.Printf("✅ Connected to %s database", cfg.DBDriver)
	DB = db
	return nil
}

// Migrate creates the users, groups and contacts tables with their unique
// indexes. Idempotent; called once from main, never as an import side effect.
func Migrate() error {
	if err := DB.AutoMigrate(&models.User{}, &models.Group{}, &models.Contact{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Println("✅ Database schema ready: users, groups, contacts")
	return nil
}
