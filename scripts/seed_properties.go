package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"rental-scheduling-server/models"
	"rental-scheduling-server/storage"
)

// Seeds a couple of demo properties so the calendar has something to show.
// Run with: go run ./scripts
func main() {
	storage.LoadEnv()

	db, err := storage.InitializeDB()
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if db == nil {
		log.Fatal("DB_CONNECTION_STRING is required for seeding")
	}
	store := storage.NewGormStore(db)
	ctx := context.Background()

	properties := []models.Property{
		{OwnerID: 1, Title: "Seaside Loft", PricePerNight: 100, Currency: "USD", BedroomCount: 2, Capacity: 6},
		{OwnerID: 1, Title: "Old Town Studio", PricePerNight: 55, Currency: "USD", BedroomCount: 1, Capacity: 3},
		{OwnerID: 2, Title: "Mountain Cabin", PricePerNight: 140, Currency: "USD", BedroomCount: 3, Capacity: 8},
	}

	for i := range properties {
		if err := store.SaveProperty(ctx, &properties[i]); err != nil {
			log.Fatalf("seed property %q: %v", properties[i].Title, err)
		}
	}

	// Block next week's Wednesday on the cabin for maintenance.
	now := time.Now()
	wednesday := now.AddDate(0, 0, (10-int(now.Weekday()))%7+7)
	block := models.PropertyBlock{
		PropertyID: properties[2].ID,
		StartDate:  time.Date(wednesday.Year(), wednesday.Month(), wednesday.Day(), 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(wednesday.Year(), wednesday.Month(), wednesday.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1),
		Reason:     "maintenance",
	}
	if err := store.CreateBlock(ctx, &block); err != nil {
		log.Fatalf("seed block: %v", err)
	}

	fmt.Println("Seeding completed successfully!")
}
