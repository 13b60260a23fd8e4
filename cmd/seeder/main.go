package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// Create 4 dummy players to use in matches
	dummyPlayers := []arena.PlayerInfo{
		{ID: "player-1", Name: "Seeder Player A", Rating: 1200},
		{ID: "player-2", Name: "Seeder Player B", Rating: 1250},
		{ID: "player-3", Name: "Seeder Player C", Rating: 1150},
		{ID: "player-4", Name: "Seeder Player D", Rating: 1300},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (id, name, rating) VALUES (?, ?, ?)", p.ID, p.Name, p.Rating)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	const batchSize = 100 // Insert 100 matches at a time
	const numMatches = 10000

	log.Info("Preparing to insert dummy matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*13) // 13 columns per match

	for i := 0; i < numMatches; i++ {
		startedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		a := dummyPlayers[rand.Intn(len(dummyPlayers))]
		b := dummyPlayers[rand.Intn(len(dummyPlayers))]
		for b.ID == a.ID {
			b = dummyPlayers[rand.Intn(len(dummyPlayers))]
		}

		slotA, _ := json.Marshal(arena.PlayerSlot{PlayerID: a.ID, Done: true})
		slotB, _ := json.Marshal(arena.PlayerSlot{PlayerID: b.ID, Done: true})

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			"seeded-challenge",
			string(arena.StateConcluded),
			string(arena.CauseMutualDone),
			a.ID,
			b.ID,
			string(slotA),
			string(slotB),
			a.ID, // winner_id
			0,    // draw
			startedAt.Unix(),
			startedAt.Add(time.Hour).Unix(),
			startedAt.Add(30*time.Minute).Unix(),
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO matches (id, challenge_id, state, cause, player_a_id, player_b_id,
					slot_a_json, slot_b_json, winner_id, draw, started_at, deadline, concluded_at)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*13)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "duration", duration)
}
