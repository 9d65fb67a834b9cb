package raffle

import (
	"errors"
	"fmt"
)

// Configuration errors: the caller's raffle data is malformed and must be fixed
// upstream, never retried.
var (
	ErrEmptyPool      = errors.New("raffle has no entries to draw from")
	ErrTicketOverflow = errors.New("total tickets exceed the safe 64-bit bound")
)

// ErrBrokenRanges signals a tiling invariant violation. It means a bug in the
// allocator, not a user-correctable condition, and always aborts the draw.
var ErrBrokenRanges = errors.New("ticket ranges do not tile the ticket space")

// InvalidEntryError is returned when an entry carries a non-positive ticket
// count. Zero-ticket entries must be rejected before allocation.
type InvalidEntryError struct {
	EntryID string
	Tickets int64
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("entry %s has invalid ticket count %d (must be >= 1)", e.EntryID, e.Tickets)
}

// InsufficientEntriesError is a draw-time error: fewer eligible winners exist
// than the raffle asks for. Eligible tells the admin how many draws could still
// succeed so they can lower the winner count.
type InsufficientEntriesError struct {
	Requested int
	Eligible  int
}

func (e *InsufficientEntriesError) Error() string {
	return fmt.Sprintf("raffle requests %d winners but only %d eligible remain", e.Requested, e.Eligible)
}

// DrawExhaustedError is returned when the rejection-sampling loop hits its
// bounded retry cap before finding an eligible ticket.
type DrawExhaustedError struct {
	Spin     int
	Attempts int
	Eligible int
}

func (e *DrawExhaustedError) Error() string {
	return fmt.Sprintf("draw %d exhausted after %d attempts (%d eligible remaining)", e.Spin, e.Attempts, e.Eligible)
}
