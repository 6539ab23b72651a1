package storage

import (
	"log"
	"os"

	"rental-scheduling-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoadEnv loads the .env file in development. In production the variables
// come from the environment directly and the file is absent.
func LoadEnv() {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}
}

// InitializeDB connects to Postgres using DB_CONNECTION_STRING and migrates
// the tables this core owns. Returns (nil, nil) when no connection string is
// configured so callers can fall back to the in-memory store.
func InitializeDB() (*gorm.DB, error) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Property{},
		&models.Booking{},
		&models.PropertyBlock{},
		&models.DayPrice{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
