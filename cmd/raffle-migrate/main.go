package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-raffle/internal/config"
	"ms-raffle/internal/draw/db"
	"ms-raffle/internal/models"
)

// Standalone migration tool: creates the raffle tables and optionally seeds a
// demo raffle for local development.
func main() {
	seedDemo := flag.Bool("seed", false, "insert a demo raffle with entries")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN()))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Migrate(ctx, bunDB); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("raffle tables ready")

	if !*seedDemo {
		return
	}

	store := &db.DB{Bun: bunDB}
	raffleID := uuid.NewString()
	if err := store.CreateRaffle(ctx, models.Raffle{
		RaffleID:        raffleID,
		Title:           "Demo raffle",
		NumberOfWinners: 2,
		Status:          models.RaffleStatusOpen,
		CreatedAt:       time.Now(),
	}); err != nil {
		log.Fatalf("seed raffle failed: %v", err)
	}

	demoEntries := []struct {
		username string
		tickets  int64
	}{
		{"alice", 10},
		{"bob", 20},
		{"carol", 70},
	}
	for i, e := range demoEntries {
		if err := store.CreateEntry(ctx, models.Entry{
			EntryID:   uuid.NewString(),
			RaffleID:  raffleID,
			UserID:    uuid.NewString(),
			Username:  e.username,
			Tickets:   e.tickets,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			log.Fatalf("seed entry failed: %v", err)
		}
	}
	log.Printf("demo raffle %s seeded with %d entries", raffleID, len(demoEntries))
}
