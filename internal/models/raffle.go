package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Raffle statuses. A raffle only ever moves forward: open -> drawn -> archived.
const (
	RaffleStatusOpen     = "open"
	RaffleStatusDrawn    = "drawn"
	RaffleStatusArchived = "archived"
)

type Raffle struct {
	bun.BaseModel `bun:"table:raffles"`

	RaffleID        string    `bun:"raffle_id,pk" json:"raffle_id"`
	Title           string    `bun:"title" json:"title"`
	NumberOfWinners int       `bun:"number_of_winners" json:"number_of_winners"`
	Status          string    `bun:"status" json:"status"`
	// DrawSeed is assigned once at draw time and never changes afterwards.
	// It is the decimal form of the 64-bit seed that fixes the whole draw.
	DrawSeed  string    `bun:"draw_seed,nullzero" json:"draw_seed,omitempty"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	DrawnAt   time.Time `bun:"drawn_at,nullzero" json:"drawn_at,omitempty"`
}

// Entry is one participant's stake in a raffle. Tickets come from points spent.
// RangeStart/RangeEnd form the half-open interval [start, end) assigned by the
// allocator at draw time; before the draw both are zero.
type Entry struct {
	bun.BaseModel `bun:"table:raffle_entries"`

	EntryID    string    `bun:"entry_id,pk" json:"entry_id"`
	RaffleID   string    `bun:"raffle_id" json:"raffle_id"`
	UserID     string    `bun:"user_id" json:"user_id"`
	Username   string    `bun:"username" json:"username"`
	Tickets    int64     `bun:"tickets" json:"tickets"`
	RangeStart int64     `bun:"range_start" json:"range_start"`
	RangeEnd   int64     `bun:"range_end" json:"range_end"`
	CreatedAt  time.Time `bun:"created_at" json:"created_at"`
}

// Winner is one draw outcome. SelectedTicketIndex always lies inside
// [TicketRangeStart, TicketRangeEnd) and SpinNumber is the 1-based draw order
// that drives the reveal animation sequence.
type Winner struct {
	bun.BaseModel `bun:"table:raffle_winners"`

	WinnerID            string    `bun:"winner_id,pk" json:"-"`
	RaffleID            string    `bun:"raffle_id" json:"-"`
	EntryID             string    `bun:"entry_id" json:"entry_id"`
	UserID              string    `bun:"user_id" json:"user_id"`
	Username            string    `bun:"username" json:"username"`
	Tickets             int64     `bun:"tickets" json:"tickets"`
	SelectedTicketIndex int64     `bun:"selected_ticket_index" json:"selected_ticket_index"`
	TicketRangeStart    int64     `bun:"ticket_range_start" json:"ticket_range_start"`
	TicketRangeEnd      int64     `bun:"ticket_range_end" json:"ticket_range_end"`
	SpinNumber          int       `bun:"spin_number" json:"spin_number"`
	CreatedAt           time.Time `bun:"created_at" json:"-"`
}

// WheelSegment is one renderable arc of the wheel. In per-ticket mode there is
// one segment per ticket; in aggregated mode one per entry.
type WheelSegment struct {
	EntryID    string  `json:"entry_id"`
	Username   string  `json:"username"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

// WheelResponse is everything a client needs to render the wheel and stop it on
// any winning ticket without another server call.
type WheelResponse struct {
	RaffleID     string         `json:"raffle_id"`
	Mode         string         `json:"mode"` // "per_ticket" or "aggregated"
	TotalTickets int64          `json:"total_tickets"`
	Entries      []Entry        `json:"entries"`
	Segments     []WheelSegment `json:"segments"`
}

// ReplayWinner joins a persisted winner with its recomputed stop angle.
type ReplayWinner struct {
	Winner
	StopAngle float64 `json:"stop_angle"`
}

// ReplayResponse lets a client re-run the full reveal of a past draw.
type ReplayResponse struct {
	RaffleID     string         `json:"raffle_id"`
	DrawSeed     string         `json:"draw_seed"`
	Mode         string         `json:"mode"`
	TotalTickets int64          `json:"total_tickets"`
	Winners      []ReplayWinner `json:"winners"`
}

// VerifyResponse reports whether a re-executed draw from the stored seed and
// snapshot reproduces the persisted winners.
type VerifyResponse struct {
	RaffleID   string   `json:"raffle_id"`
	DrawSeed   string   `json:"draw_seed"`
	Reproduced bool     `json:"reproduced"`
	Mismatches []string `json:"mismatches,omitempty"`
}
