package raffle

import (
	"fmt"

	"ms-raffle/internal/models"
)

// DrawPolicy controls win-without-replacement semantics. With repeat winners
// disabled (the default) a user can win at most once per raffle and the
// exclusion set tracks user ids; with repeat winners enabled a user may win
// through several entries and the exclusion set tracks entry ids instead.
type DrawPolicy struct {
	AllowRepeatWinners bool
}

// rejectionCapFactor bounds the resample loop: each spin gets at most
// 10x the remaining eligible pool before the draw fails with DrawExhausted.
const rejectionCapFactor = 10

// Draw performs k sequential draws without replacement over the allocated
// ticket space and returns winners in draw order. Rejection sampling keeps a
// single canonical range table for the whole draw, so every
// SelectedTicketIndex stays verifiable against the original snapshot. The
// whole run is a pure function of (entries, totalTickets, src, k, policy):
// the same seed and snapshot always reproduce the same winner list.
func Draw(entries []models.Entry, totalTickets int64, src TicketSource, k int, policy DrawPolicy) ([]models.Winner, error) {
	if k < 1 {
		return nil, fmt.Errorf("number of winners must be >= 1, got %d", k)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyPool
	}
	if totalTickets < 1 || entries[len(entries)-1].RangeEnd != totalTickets {
		return nil, ErrBrokenRanges
	}

	eligible := eligibleCount(entries, policy, nil)
	if eligible < k {
		return nil, &InsufficientEntriesError{Requested: k, Eligible: eligible}
	}

	excluded := make(map[string]bool, k)
	winners := make([]models.Winner, 0, k)

	for spin := 1; spin <= k; spin++ {
		remaining := eligibleEntries(entries, policy, excluded)
		maxAttempts := rejectionCapFactor * remaining

		var winner *models.Entry
		var ticket int64
		attempts := 0
		for winner == nil {
			if attempts >= maxAttempts {
				return nil, &DrawExhaustedError{Spin: spin, Attempts: attempts, Eligible: remaining}
			}
			attempts++

			t := src.Next(totalTickets)
			e, err := EntryAt(entries, totalTickets, t)
			if err != nil {
				return nil, err
			}
			if excluded[exclusionKey(e, policy)] {
				continue
			}
			winner, ticket = e, t
		}

		winners = append(winners, models.Winner{
			EntryID:             winner.EntryID,
			UserID:              winner.UserID,
			Username:            winner.Username,
			Tickets:             winner.Tickets,
			SelectedTicketIndex: ticket,
			TicketRangeStart:    winner.RangeStart,
			TicketRangeEnd:      winner.RangeEnd,
			SpinNumber:          spin,
		})
		excluded[exclusionKey(winner, policy)] = true
	}

	return winners, nil
}

func exclusionKey(e *models.Entry, policy DrawPolicy) string {
	if policy.AllowRepeatWinners {
		return e.EntryID
	}
	return e.UserID
}

// eligibleCount counts the distinct draw units (users or entries, depending on
// policy) not yet excluded.
func eligibleCount(entries []models.Entry, policy DrawPolicy, excluded map[string]bool) int {
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		key := exclusionKey(&entries[i], policy)
		if !excluded[key] {
			seen[key] = true
		}
	}
	return len(seen)
}

// eligibleEntries counts entries still able to win; it sizes the rejection cap.
func eligibleEntries(entries []models.Entry, policy DrawPolicy, excluded map[string]bool) int {
	n := 0
	for i := range entries {
		if !excluded[exclusionKey(&entries[i], policy)] {
			n++
		}
	}
	return n
}
