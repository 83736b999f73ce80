package main

import (
	"log"
	"os"

	"github.com/shopspring/decimal"

	"tripsify/internal/database"
	"tripsify/internal/domain"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "tripsify.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM tours")
	db.Exec("DELETE FROM users")
	db.Exec("DELETE FROM cities")
	db.Exec("DELETE FROM countries")

	// ================== GEO ==================
	log.Println("Creating countries and cities...")

	countries := []domain.Country{
		{ISO2: "US", PhoneCode: "1", Name: domain.NameOf("United States"), IsActive: true},
		{ISO2: "FR", PhoneCode: "33", Name: domain.NameOf("France"), IsActive: true},
		// the gateway returns some names as locale maps, keep one seeded
		// that way so normalization stays exercised end to end
		{ISO2: "MA", PhoneCode: "212", Name: domain.LocalizedNameOf(map[string]string{
			"en": "Morocco",
			"fr": "Maroc",
			"ar": "المغرب",
		}), IsActive: true},
		{ISO2: "KZ", PhoneCode: "7", Name: domain.NameOf("Kazakhstan"), IsActive: false},
	}
	for i := range countries {
		if err := db.Create(&countries[i]).Error; err != nil {
			log.Fatal("country seed failed:", err)
		}
	}

	cities := []domain.City{
		{CountryID: countries[0].ID, Name: domain.NameOf("New York"), IsActive: true},
		{CountryID: countries[0].ID, Name: domain.NameOf("Miami"), IsActive: true},
		{CountryID: countries[1].ID, Name: domain.NameOf("Paris"), IsActive: true},
		{CountryID: countries[1].ID, Name: domain.NameOf("Lyon"), IsActive: true},
		{CountryID: countries[2].ID, Name: domain.LocalizedNameOf(map[string]string{
			"en": "Marrakesh",
			"fr": "Marrakech",
		}), IsActive: true},
		{CountryID: countries[2].ID, Name: domain.NameOf("Casablanca"), IsActive: true},
	}
	for i := range cities {
		if err := db.Create(&cities[i]).Error; err != nil {
			log.Fatal("city seed failed:", err)
		}
	}

	// ================== USERS ==================
	log.Println("Creating demo driver...")

	driver := domain.User{
		Email:           "driver@tripsify.app",
		PhoneCode:       "1",
		PhoneNumber:     "5012345",
		FullName:        "Demo Driver",
		Role:            domain.RoleDriver,
		CountryID:       countries[0].ID,
		CityID:          cities[0].ID,
		PhoneVerified:   true,
		OnboardingStage: domain.StageComplete,
	}
	if err := db.Create(&driver).Error; err != nil {
		log.Fatal("user seed failed:", err)
	}

	// ================== TOURS ==================
	log.Println("Creating tours...")

	tours := []domain.Tour{
		{
			DriverID:     driver.ID,
			Title:        "Manhattan by Night",
			Description:  "Evening drive through the lit-up city.",
			CountryID:    countries[0].ID,
			CityID:       cities[0].ID,
			PricePerSeat: decimal.NewFromFloat(49.90),
			Currency:     "USD",
			Seats:        3,
			DurationHrs:  3,
			IsActive:     true,
		},
		{
			DriverID:     driver.ID,
			Title:        "Everglades Day Trip",
			CountryID:    countries[0].ID,
			CityID:       cities[1].ID,
			PricePerSeat: decimal.NewFromFloat(120),
			Currency:     "USD",
			Seats:        4,
			DurationHrs:  8,
			IsActive:     true,
		},
		{
			DriverID:     driver.ID,
			Title:        "Old Paris Walkabout",
			CountryID:    countries[1].ID,
			CityID:       cities[2].ID,
			PricePerSeat: decimal.NewFromFloat(75.50),
			Currency:     "EUR",
			Seats:        2,
			DurationHrs:  4,
			IsActive:     true,
		},
		{
			DriverID:     driver.ID,
			Title:        "Retired Route",
			CountryID:    countries[1].ID,
			CityID:       cities[3].ID,
			PricePerSeat: decimal.NewFromFloat(30),
			Currency:     "EUR",
			Seats:        4,
			DurationHrs:  2,
			IsActive:     false,
		},
	}
	for i := range tours {
		if err := db.Create(&tours[i]).Error; err != nil {
			log.Fatal("tour seed failed:", err)
		}
	}

	log.Printf("Seed complete: %d countries, %d cities, %d tours", len(countries), len(cities), len(tours))
}
