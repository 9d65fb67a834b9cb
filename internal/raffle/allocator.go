package raffle

import (
	"fmt"
	"sort"

	"ms-raffle/internal/models"
)

// MaxTotalTickets caps the ticket space well below int64 overflow.
const MaxTotalTickets = int64(1) << 62

// AllocateTickets assigns contiguous half-open ticket ranges to entries in
// slice order and returns the total ticket count. The ranges tile
// [0, totalTickets) with no gaps and no overlaps: range_start of the first
// entry is 0, every range_end equals the next range_start, and the final
// range_end equals the total. Entry order must be the frozen snapshot order
// (creation order), because range placement decides which concrete ticket
// index belongs to which entry.
func AllocateTickets(entries []models.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyPool
	}

	var total int64
	for i := range entries {
		e := &entries[i]
		if e.Tickets < 1 {
			return 0, &InvalidEntryError{EntryID: e.EntryID, Tickets: e.Tickets}
		}
		if e.Tickets > MaxTotalTickets-total {
			return 0, ErrTicketOverflow
		}
		e.RangeStart = total
		total += e.Tickets
		e.RangeEnd = total
	}
	return total, nil
}

// EntryAt locates the entry whose range contains ticket index t via binary
// search over the sorted range starts. The entries must already be allocated.
func EntryAt(entries []models.Entry, totalTickets, t int64) (*models.Entry, error) {
	if t < 0 || t >= totalTickets {
		return nil, fmt.Errorf("ticket index %d outside [0, %d): %w", t, totalTickets, ErrBrokenRanges)
	}
	// First entry whose range ends past t.
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].RangeEnd > t
	})
	if i == len(entries) || entries[i].RangeStart > t {
		return nil, fmt.Errorf("no range contains ticket index %d: %w", t, ErrBrokenRanges)
	}
	return &entries[i], nil
}
