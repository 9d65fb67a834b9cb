package raffle

import (
	"fmt"

	"ms-raffle/internal/models"
)

// Wheel rendering modes.
const (
	WheelModePerTicket  = "per_ticket"
	WheelModeAggregated = "aggregated"
)

// DefaultSegmentThreshold is the largest ticket count rendered one segment per
// ticket. Above it the wheel aggregates each entry's tickets into one arc.
const DefaultSegmentThreshold = int64(2000)

// WheelMapper translates winning ticket indexes into wheel stop angles. It is
// a pure function of public data (the allocated entry ranges plus a ticket
// index), so any client holding the entry snapshot and a winner record can
// recompute the identical angle with no extra server state.
type WheelMapper struct {
	Threshold int64
}

func NewWheelMapper(threshold int64) WheelMapper {
	if threshold < 1 {
		threshold = DefaultSegmentThreshold
	}
	return WheelMapper{Threshold: threshold}
}

func (m WheelMapper) Mode(totalTickets int64) string {
	if totalTickets > m.Threshold {
		return WheelModeAggregated
	}
	return WheelModePerTicket
}

// StopAngle computes the rotation angle at which the wheel pointer lands on
// ticket index t. In per-ticket mode the target is the midpoint of the
// ticket's own segment; in aggregated mode it is the midpoint of the winning
// entry's whole arc. The physical angle is 360 minus the midpoint, matching
// the pointer-at-top convention of the dashboard wheel.
func (m WheelMapper) StopAngle(entries []models.Entry, totalTickets, t int64) (float64, error) {
	if totalTickets < 1 {
		return 0, fmt.Errorf("total tickets must be >= 1: %w", ErrBrokenRanges)
	}

	var mid float64
	if m.Mode(totalTickets) == WheelModePerTicket {
		if t < 0 || t >= totalTickets {
			return 0, fmt.Errorf("ticket index %d outside [0, %d): %w", t, totalTickets, ErrBrokenRanges)
		}
		anglePerTicket := 360.0 / float64(totalTickets)
		mid = (float64(t) + 0.5) * anglePerTicket
	} else {
		e, err := EntryAt(entries, totalTickets, t)
		if err != nil {
			return 0, err
		}
		start := float64(e.RangeStart) / float64(totalTickets) * 360.0
		end := float64(e.RangeEnd) / float64(totalTickets) * 360.0
		mid = (start + end) / 2
	}
	return 360.0 - mid, nil
}

// BuildSegments produces the renderer-facing arc table. Per-ticket mode emits
// one segment per ticket labelled with its owning entry; aggregated mode emits
// one proportional arc per entry. Every entry with tickets >= 1 keeps a
// strictly positive arc width even when a single entry dominates the pool,
// because widths derive from the integer range bounds.
func (m WheelMapper) BuildSegments(entries []models.Entry, totalTickets int64) []models.WheelSegment {
	if totalTickets < 1 {
		return nil
	}

	if m.Mode(totalTickets) == WheelModePerTicket {
		anglePerTicket := 360.0 / float64(totalTickets)
		segments := make([]models.WheelSegment, 0, totalTickets)
		for i := range entries {
			e := &entries[i]
			for t := e.RangeStart; t < e.RangeEnd; t++ {
				segments = append(segments, models.WheelSegment{
					EntryID:    e.EntryID,
					Username:   e.Username,
					StartAngle: float64(t) * anglePerTicket,
					EndAngle:   float64(t+1) * anglePerTicket,
				})
			}
		}
		return segments
	}

	segments := make([]models.WheelSegment, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		segments = append(segments, models.WheelSegment{
			EntryID:    e.EntryID,
			Username:   e.Username,
			StartAngle: float64(e.RangeStart) / float64(totalTickets) * 360.0,
			EndAngle:   float64(e.RangeEnd) / float64(totalTickets) * 360.0,
		})
	}
	return segments
}
