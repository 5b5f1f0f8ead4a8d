package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/motormarket/user-service/config"
	"github.com/motormarket/user-service/internal/domain/entity"
	"github.com/motormarket/user-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	buyerID := seedUser(db, "buyer@example.com", "password123", "Demo Buyer", entity.TypeUser, "5551234567")
	dealerID := seedUser(db, "dealer@example.com", "password123", "Demo Dealer", entity.TypeDealer, "5559876543")

	cars := []struct {
		title, mk, model string
		year             int
		priceCents       int64
	}{
		{"2019 Golf GTI, one owner", "Volkswagen", "Golf GTI", 2019, 2250000},
		{"2021 Model 3 Long Range", "Tesla", "Model 3", 2021, 3390000},
		{"2015 Corolla, low mileage", "Toyota", "Corolla", 2015, 1150000},
	}
	for _, c := range cars {
		var id string
		err := db.QueryRow(`
			INSERT INTO cars (owner_id, title, make, model, year, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (owner_id, title) DO NOTHING
			RETURNING id
		`, dealerID, c.title, c.mk, c.model, c.year, c.priceCents).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Printf("car %q already seeded\n", c.title)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed car %q: %v", c.title, err)
		}
		fmt.Printf("seeded car: id=%s title=%q\n", id, c.title)
	}

	fmt.Printf("seeded users: buyer=%s dealer=%s (password: password123)\n", buyerID, dealerID)
}

func seedUser(db *sql.DB, email, password, name, accType, phone string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, type, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name, accType, phone).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}
