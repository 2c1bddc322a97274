package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/glowcast/glowcast/config"
	"github.com/glowcast/glowcast/pkg/credential"
)

// seed inserts a couple of demo streamer accounts for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	demos := []struct {
		username string
		email    string
		password string
		points   int64
	}{
		{"demoStreamer", "streamer@glowcast.dev", "password123", 500},
		{"demoViewer", "viewer@glowcast.dev", "password123", 100},
	}

	for _, d := range demos {
		salt, err := credential.NewSalt()
		if err != nil {
			log.Fatalf("failed to make salt: %v", err)
		}
		hash := credential.Derive(d.password, salt)

		var id string
		err = db.QueryRow(`
			INSERT INTO users (username, username_lower, email, password_hash, password_salt, points)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO UPDATE SET updated_at = now()
			RETURNING id
		`, d.username, strings.ToLower(d.username), d.email, hash, salt, d.points).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", d.username, err)
		}
		fmt.Printf("seeded user: id=%s username=%s password=%s points=%d\n", id, d.username, d.password, d.points)
	}
}
