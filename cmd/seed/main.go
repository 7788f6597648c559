package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housie/internal/database"
	"housie/internal/domain"
)

type seedCleaner struct {
	name     string
	email    string
	city     string
	lat, lng float64
	rate     float64
	years    int
	bio      string
	services []string
}

var cleaners = []seedCleaner{
	{"Marie Tremblay", "marie@housie.ca", "Montréal", 45.5231, -73.5817, 32, 8,
		"Ménage résidentiel et grand ménage de printemps.", []string{"regular-cleaning", "deep-cleaning", "windows"}},
	{"Jean-François Gagnon", "jf@housie.ca", "Laval", 45.6066, -73.7124, 45, 12,
		"Handyman: assembly, painting and small repairs.", []string{"furniture-assembly", "painting", "plumbing"}},
	{"Sophie Roy", "sophie@housie.ca", "Longueuil", 45.5312, -73.5181, 28, 3,
		"Move-out cleaning and post-construction dust removal.", []string{"move-cleaning", "post-construction"}},
	{"Luc Bouchard", "luc@housie.ca", "Québec", 46.8139, -71.2080, 40, 15,
		"Déneigement et entretien de pelouse toute l'année.", []string{"snow-removal", "lawn-care"}},
	{"Amira Haddad", "amira@housie.ca", "Montréal", 45.4972, -73.6104, 38, 6,
		"Déménagement local, camion inclus.", []string{"moving", "regular-cleaning"}},
}

var customers = []struct {
	name, email, city string
	services          []string
}{
	{"Chloé Lavoie", "chloe@example.ca", "Montréal", []string{"deep-cleaning"}},
	{"David Chen", "david@example.ca", "Laval", []string{"painting", "moving"}},
	{"Émilie Côté", "emilie@example.ca", "Québec", []string{"snow-removal"}},
}

var prices = []domain.ServicePrice{
	{ServiceType: "deep-cleaning", BasePrice: 70, HourlyRate: 42, DurationHours: 4},
	{ServiceType: "snow-removal", BasePrice: 35, HourlyRate: 45, DurationHours: 1},
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "housie.db"
	}
	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db, domain.Models()...); err != nil {
		log.Fatal(err)
	}

	log.Println("Cleaning old data...")
	for _, table := range []string{
		"notifications", "bookings", "chat_messages", "conversations", "user_presence",
		"user_preferences", "cleaner_profiles", "customer_profiles", "password_resets",
		"refresh_tokens", "service_prices", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("housie123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var cleanerIDs []int64
		for _, c := range cleaners {
			u := domain.User{
				FullName:     c.name,
				Email:        c.email,
				PhoneNumber:  fmt.Sprintf("+1514555%04d", 1000+len(cleanerIDs)),
				Role:         domain.RoleCleaner,
				PasswordHash: string(hash),
				ServiceArea:  &c.city,
				HourlyRate:   &c.rate,
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("cleaner %s: %w", c.email, err)
			}
			lat, lng, rate := c.lat, c.lng, c.rate
			p := domain.CleanerProfile{
				UserID:          u.ID,
				Bio:             c.bio,
				City:            c.city,
				Latitude:        &lat,
				Longitude:       &lng,
				ServiceRadiusKM: 25,
				HourlyRate:      &rate,
				Services:        c.services,
				YearsExperience: c.years,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if err := tx.Create(preferencesFor(u.ID, "fr")).Error; err != nil {
				return err
			}
			cleanerIDs = append(cleanerIDs, u.ID)
		}
		log.Printf("Created %d cleaners", len(cleanerIDs))

		var customerIDs []int64
		for _, c := range customers {
			u := domain.User{
				FullName:     c.name,
				Email:        c.email,
				Role:         domain.RoleCustomer,
				PasswordHash: string(hash),
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("customer %s: %w", c.email, err)
			}
			p := domain.CustomerProfile{UserID: u.ID, City: c.city, PreferredServices: c.services}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if err := tx.Create(preferencesFor(u.ID, "en")).Error; err != nil {
				return err
			}
			customerIDs = append(customerIDs, u.ID)
		}
		log.Printf("Created %d customers", len(customerIDs))

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&prices).Error; err != nil {
			return fmt.Errorf("service prices: %w", err)
		}

		// One conversation and one pending booking so the inbox is not empty.
		now := time.Now().UTC()
		conv := domain.Conversation{
			ID:            uuid.NewString(),
			CustomerID:    customerIDs[0],
			CleanerID:     cleanerIDs[0],
			LastMessageAt: now,
		}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		msgs := []domain.ChatMessage{
			{ID: uuid.NewString(), ConversationID: conv.ID, SenderID: customerIDs[0], Content: "Bonjour! Êtes-vous disponible samedi?", MessageType: domain.MessageTypeText, IsRead: true, CreatedAt: now.Add(-time.Hour)},
			{ID: uuid.NewString(), ConversationID: conv.ID, SenderID: cleanerIDs[0], Content: "Oui, à partir de 9h.", MessageType: domain.MessageTypeText, CreatedAt: now},
		}
		if err := tx.Create(&msgs).Error; err != nil {
			return err
		}

		b := domain.Booking{
			CustomerID:        customerIDs[0],
			CleanerID:         cleanerIDs[0],
			ServiceType:       "deep-cleaning",
			BookingDate:       now.AddDate(0, 0, 7).Format("2006-01-02"),
			BookingTime:       "09:00",
			Address:           "1234 rue Saint-Denis, Montréal",
			Phone:             "+15145550199",
			EstimatedPrice:    238,
			EstimatedDuration: 4,
			Status:            domain.BookingPending,
		}
		return tx.Create(&b).Error
	})
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Println("Seed complete. Every account uses password housie123")
}

func preferencesFor(userID int64, locale string) *domain.UserPreferences {
	p := domain.DefaultPreferences(userID)
	p.Locale = locale
	return &p
}
