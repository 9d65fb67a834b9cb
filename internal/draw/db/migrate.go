package db

import (
	"context"
	"fmt"

	"ms-raffle/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the raffle tables. Tables are never dropped here: drawn
// raffles and their winners are immutable audit records.
func Migrate(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Raffle)(nil),
		(*models.Entry)(nil),
		(*models.Winner)(nil),
	}
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table failed: %w", err)
		}
	}
	return nil
}
