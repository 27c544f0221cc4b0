package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gymflow/internal/bookings"
	"gymflow/internal/clients"
	"gymflow/internal/schedules"
	"gymflow/internal/shared/config"
	"gymflow/internal/shared/database"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Seeder struct {
	db    *database.DB
	orgID uuid.UUID
}

func main() {
	fmt.Println("🌱 Starting GymFlow Database Seeder...")

	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, orgID: uuid.New()}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	token, err := seeder.DevToken(cfg.JWT.Secret)
	if err != nil {
		log.Fatalf("Failed to sign dev token: %v", err)
	}
	fmt.Printf("\n🔑 Organization: %s\n", seeder.orgID)
	fmt.Printf("🔑 Dev access token (24h):\n%s\n", token)

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"waitlist_entries",
		"class_bookings",
		"clients",
		"class_schedules",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds one full class with a waitlist enabled, one class with open
// spots and a handful of clients, some of them already booked.
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	clientIDs, err := s.SeedClients()
	if err != nil {
		return fmt.Errorf("failed to seed clients: %w", err)
	}

	full, err := s.SeedSchedule("Morning Spin", time.Now().Add(24*time.Hour), 3, true)
	if err != nil {
		return fmt.Errorf("failed to seed schedules: %w", err)
	}
	if _, err := s.SeedSchedule("Evening Yoga", time.Now().Add(36*time.Hour), 12, true); err != nil {
		return fmt.Errorf("failed to seed schedules: %w", err)
	}

	if err := s.SeedBookings(full, clientIDs[:3]); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedClients creates six gym members
func (s *Seeder) SeedClients() ([]uuid.UUID, error) {
	fmt.Println("  👤 Seeding clients...")

	clientsData := []struct {
		firstName string
		lastName  string
		email     string
	}{
		{"Ava", "Patel", "ava@example.com"},
		{"Ben", "Okafor", "ben@example.com"},
		{"Chloe", "Martin", "chloe@example.com"},
		{"Dev", "Sharma", "dev@example.com"},
		{"Elena", "Rossi", "elena@example.com"},
		{"Finn", "Walsh", "finn@example.com"},
	}

	ids := make([]uuid.UUID, 0, len(clientsData))
	for _, data := range clientsData {
		client := clients.Client{
			OrganizationID: s.orgID,
			FirstName:      data.firstName,
			LastName:       data.lastName,
			Email:          data.email,
		}
		if err := s.db.PostgreSQL.Create(&client).Error; err != nil {
			return nil, fmt.Errorf("failed to create client %s: %w", data.email, err)
		}
		ids = append(ids, client.ID)
		fmt.Printf("    ✅ Created client: %s (%s)\n", client.FullName(), client.ID)
	}

	return ids, nil
}

// SeedSchedule creates one class occurrence
func (s *Seeder) SeedSchedule(name string, startsAt time.Time, capacity int, waitlistEnabled bool) (*schedules.ClassSchedule, error) {
	schedule := &schedules.ClassSchedule{
		OrganizationID:  s.orgID,
		Name:            name,
		StartsAt:        startsAt.UTC().Truncate(time.Hour),
		MaxCapacity:     capacity,
		WaitlistEnabled: waitlistEnabled,
	}
	if err := s.db.PostgreSQL.Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create schedule %s: %w", name, err)
	}
	fmt.Printf("    📅 Created class: %s (%s), capacity %d\n", schedule.Name, schedule.ID, schedule.MaxCapacity)
	return schedule, nil
}

// SeedBookings books the given clients into the schedule and keeps its counter in step
func (s *Seeder) SeedBookings(schedule *schedules.ClassSchedule, clientIDs []uuid.UUID) error {
	for _, clientID := range clientIDs {
		booking := &bookings.ClassBooking{
			OrganizationID: s.orgID,
			ScheduleID:     schedule.ID,
			ClientID:       clientID,
			Status:         bookings.StatusConfirmed,
			PaymentStatus:  bookings.PaymentStatusSucceeded,
		}
		if err := s.db.PostgreSQL.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
	}

	return s.db.PostgreSQL.Model(schedule).Update("current_bookings", len(clientIDs)).Error
}

// DevToken signs an access token scoped to the seeded organization
func (s *Seeder) DevToken(secret string) (string, error) {
	claims := jwt.MapClaims{
		"type":            "access",
		"user_id":         uuid.NewString(),
		"role":            "admin",
		"organization_id": s.orgID.String(),
		"exp":             time.Now().Add(24 * time.Hour).Unix(),
		"iat":             time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
