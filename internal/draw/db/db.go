package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-raffle/internal/models"

	"github.com/uptrace/bun"
)

// ErrRaffleConflict is returned when a draw tries to persist against a raffle
// that is no longer open. The status guard inside the transaction is what makes
// a second draw on the same raffle impossible, even under concurrent requests.
var ErrRaffleConflict = errors.New("raffle is not open for drawing")

type DB struct {
	Bun *bun.DB
}

// ---------------- RAFFLES ----------------

func (d *DB) GetRaffleByID(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := d.Bun.NewSelect().
		Model(&raffle).
		Where("raffle_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

func (d *DB) CreateRaffle(ctx context.Context, raffle models.Raffle) error {
	_, err := d.Bun.NewInsert().Model(&raffle).Exec(ctx)
	return err
}

// ArchiveRaffle moves a drawn raffle to archived. Winners stay untouched.
func (d *DB) ArchiveRaffle(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Raffle)(nil)).
		Set("status = ?", models.RaffleStatusArchived).
		Where("raffle_id = ? AND status = ?", id, models.RaffleStatusDrawn).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("raffle %s is not drawn: %w", id, ErrRaffleConflict)
	}
	return nil
}

// ---------------- ENTRIES ----------------

// GetEntriesByRaffle returns the raffle's entries in their frozen snapshot
// order. Ordering is by creation time with entry id as tie-break, so replaying
// a draw always sees the same range placement.
func (d *DB) GetEntriesByRaffle(ctx context.Context, raffleID string) ([]models.Entry, error) {
	var entries []models.Entry
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("raffle_id = ?", raffleID).
		Order("created_at ASC", "entry_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *DB) CreateEntry(ctx context.Context, entry models.Entry) error {
	_, err := d.Bun.NewInsert().Model(&entry).Exec(ctx)
	return err
}

// ---------------- WINNERS ----------------

// GetWinnersByRaffle returns winners in draw order (spin_number), which is the
// order the client reveals them.
func (d *DB) GetWinnersByRaffle(ctx context.Context, raffleID string) ([]models.Winner, error) {
	var winners []models.Winner
	err := d.Bun.NewSelect().
		Model(&winners).
		Where("raffle_id = ?", raffleID).
		Order("spin_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return winners, nil
}

// SaveDrawResults persists one completed draw as a single transaction: the
// raffle flips open -> drawn with its seed, entry ranges are recorded for
// audit, and the winners are inserted. If the raffle is not open anymore the
// whole transaction rolls back and nothing is written — a draw never partially
// persists and never overwrites an earlier one.
func (d *DB) SaveDrawResults(ctx context.Context, raffleID, seed string, entries []models.Entry, winners []models.Winner) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Raffle)(nil)).
			Set("status = ?", models.RaffleStatusDrawn).
			Set("draw_seed = ?", seed).
			Set("drawn_at = ?", time.Now()).
			Where("raffle_id = ? AND status = ?", raffleID, models.RaffleStatusOpen).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark raffle drawn: %w", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return fmt.Errorf("raffle %s: %w", raffleID, ErrRaffleConflict)
		}

		for i := range entries {
			e := &entries[i]
			_, err := tx.NewUpdate().
				Model(e).
				Column("range_start", "range_end").
				Where("entry_id = ?", e.EntryID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to record ranges for entry %s: %w", e.EntryID, err)
			}
		}

		if _, err := tx.NewInsert().Model(&winners).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert winners: %w", err)
		}
		return nil
	})
}
