package draw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-raffle/internal/draw/db"
	"ms-raffle/internal/logger"
	"ms-raffle/internal/models"
	"ms-raffle/internal/raffle"

	"github.com/google/uuid"
)

// Service-level failures surfaced to the API layer.
var (
	// ErrRaffleNotOpen: the raffle was already drawn or archived. Existing
	// winners are never touched.
	ErrRaffleNotOpen = errors.New("raffle is not open for drawing")
	// ErrDrawInProgress: another draw holds the raffle's lock right now.
	ErrDrawInProgress = errors.New("a draw is already in progress for this raffle")
	// ErrRaffleNotDrawn: replay/verify need a completed draw to work from.
	ErrRaffleNotDrawn = errors.New("raffle has not been drawn yet")
)

type DBLayer interface {
	GetRaffleByID(ctx context.Context, id string) (*models.Raffle, error)
	GetEntriesByRaffle(ctx context.Context, raffleID string) ([]models.Entry, error)
	GetWinnersByRaffle(ctx context.Context, raffleID string) ([]models.Winner, error)
	SaveDrawResults(ctx context.Context, raffleID, seed string, entries []models.Entry, winners []models.Winner) error
}

type RedisLock interface {
	LockRaffle(raffleID, token string) (bool, error)
	UnlockRaffle(raffleID, token string) error
}

type KafkaPublisher interface {
	PublishDrawCompleted(raffle models.Raffle, winners []models.Winner) error
}

// Service runs raffle draws end to end: it serializes access per raffle,
// freezes the entry snapshot, executes the pure draw, and persists the outcome
// atomically. The draw itself never blocks on I/O — all inputs are fetched
// before the engine runs.
type Service struct {
	DB     DBLayer
	Redis  RedisLock
	Kafka  KafkaPublisher
	Log    *logger.Logger
	Policy raffle.DrawPolicy
	Wheel  raffle.WheelMapper
}

func NewService(dbLayer DBLayer, redisLock RedisLock, kafka KafkaPublisher, log *logger.Logger, policy raffle.DrawPolicy, wheel raffle.WheelMapper) *Service {
	return &Service{DB: dbLayer, Redis: redisLock, Kafka: kafka, Log: log, Policy: policy, Wheel: wheel}
}

func (s *Service) logDraw(action, raffleID, message string) {
	if s.Log != nil {
		s.Log.LogDraw(action, raffleID, message)
	}
}

// ExecuteDraw runs the draw for an open raffle and returns the winners in draw
// order. Seed generation, drawing, and persistence happen under one raffle
// lock and one database transaction, so a failed draw leaves no trace and a
// concurrent request is rejected rather than queued.
func (s *Service) ExecuteDraw(ctx context.Context, raffleID string) ([]models.Winner, error) {
	token := uuid.NewString()
	locked, err := s.Redis.LockRaffle(raffleID, token)
	if err != nil {
		return nil, fmt.Errorf("redis lock error: %w", err)
	}
	if !locked {
		return nil, ErrDrawInProgress
	}
	defer func() {
		if err := s.Redis.UnlockRaffle(raffleID, token); err != nil {
			s.logDraw("UNLOCK", raffleID, "failed to release draw lock: "+err.Error())
		}
	}()

	r, err := s.DB.GetRaffleByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle %s not found: %w", raffleID, err)
	}
	if r.Status != models.RaffleStatusOpen {
		return nil, ErrRaffleNotOpen
	}

	// Frozen snapshot: entries fetched after this point play no part in the draw.
	entries, err := s.DB.GetEntriesByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for raffle %s: %w", raffleID, err)
	}

	total, err := raffle.AllocateTickets(entries)
	if err != nil {
		return nil, err
	}

	seed, err := raffle.NewDrawSeed()
	if err != nil {
		return nil, err
	}

	winners, err := raffle.Draw(entries, total, raffle.NewTicketSource(seed), r.NumberOfWinners, s.Policy)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range winners {
		winners[i].WinnerID = uuid.NewString()
		winners[i].RaffleID = raffleID
		winners[i].CreatedAt = now
	}

	seedStr := raffle.FormatSeed(seed)
	if err := s.DB.SaveDrawResults(ctx, raffleID, seedStr, entries, winners); err != nil {
		if errors.Is(err, db.ErrRaffleConflict) {
			return nil, ErrRaffleNotOpen
		}
		return nil, fmt.Errorf("failed to persist draw: %w", err)
	}
	s.logDraw("COMPLETE", raffleID, fmt.Sprintf("%d winners drawn from %d tickets (seed %s)", len(winners), total, seedStr))

	r.Status = models.RaffleStatusDrawn
	r.DrawSeed = seedStr
	if s.Kafka != nil {
		if err := s.Kafka.PublishDrawCompleted(*r, winners); err != nil {
			// Event delivery is best-effort; the draw itself is already durable.
			s.logDraw("PUBLISH", raffleID, "kafka publish error: "+err.Error())
		}
	}

	return winners, nil
}

// GetWinners returns the persisted winners in reveal order.
func (s *Service) GetWinners(ctx context.Context, raffleID string) ([]models.Winner, error) {
	return s.DB.GetWinnersByRaffle(ctx, raffleID)
}

// GetWheel returns the full wheel table for a raffle: allocated entries plus
// renderable segments. For an open raffle the ranges are computed on the fly
// as a preview; for a drawn raffle the persisted snapshot ranges are reused so
// the wheel matches the recorded winners exactly.
func (s *Service) GetWheel(ctx context.Context, raffleID string) (*models.WheelResponse, error) {
	r, err := s.DB.GetRaffleByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle %s not found: %w", raffleID, err)
	}
	entries, total, err := s.snapshot(ctx, r)
	if err != nil {
		return nil, err
	}

	return &models.WheelResponse{
		RaffleID:     raffleID,
		Mode:         s.Wheel.Mode(total),
		TotalTickets: total,
		Entries:      entries,
		Segments:     s.Wheel.BuildSegments(entries, total),
	}, nil
}

// ReplayDraw joins the persisted winners with their recomputed stop angles so
// a client can re-run the reveal of a past draw from public data alone.
func (s *Service) ReplayDraw(ctx context.Context, raffleID string) (*models.ReplayResponse, error) {
	r, err := s.DB.GetRaffleByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle %s not found: %w", raffleID, err)
	}
	if r.DrawSeed == "" {
		return nil, ErrRaffleNotDrawn
	}

	entries, total, err := s.snapshot(ctx, r)
	if err != nil {
		return nil, err
	}
	winners, err := s.DB.GetWinnersByRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	replay := make([]models.ReplayWinner, 0, len(winners))
	for _, w := range winners {
		angle, err := s.Wheel.StopAngle(entries, total, w.SelectedTicketIndex)
		if err != nil {
			return nil, fmt.Errorf("winner %s (spin %d): %w", w.EntryID, w.SpinNumber, err)
		}
		replay = append(replay, models.ReplayWinner{Winner: w, StopAngle: angle})
	}

	return &models.ReplayResponse{
		RaffleID:     raffleID,
		DrawSeed:     r.DrawSeed,
		Mode:         s.Wheel.Mode(total),
		TotalTickets: total,
		Winners:      replay,
	}, nil
}

// VerifyDraw re-executes a completed draw from the stored seed and snapshot
// and reports whether it reproduces the persisted winners. This is the audit
// path: anyone with the same public data can run the same check.
func (s *Service) VerifyDraw(ctx context.Context, raffleID string) (*models.VerifyResponse, error) {
	r, err := s.DB.GetRaffleByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle %s not found: %w", raffleID, err)
	}
	if r.DrawSeed == "" {
		return nil, ErrRaffleNotDrawn
	}
	seed, err := raffle.ParseSeed(r.DrawSeed)
	if err != nil {
		return nil, err
	}

	entries, err := s.DB.GetEntriesByRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	total, err := raffle.AllocateTickets(entries)
	if err != nil {
		return nil, err
	}

	recomputed, err := raffle.Draw(entries, total, raffle.NewTicketSource(seed), r.NumberOfWinners, s.Policy)
	if err != nil {
		return nil, fmt.Errorf("replaying draw for raffle %s: %w", raffleID, err)
	}
	stored, err := s.DB.GetWinnersByRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	var mismatches []string
	if len(recomputed) != len(stored) {
		mismatches = append(mismatches, fmt.Sprintf("winner count: recomputed %d, stored %d", len(recomputed), len(stored)))
	} else {
		for i := range stored {
			if d := diffWinner(stored[i], recomputed[i]); d != "" {
				mismatches = append(mismatches, fmt.Sprintf("spin %d: %s", stored[i].SpinNumber, d))
			}
		}
	}

	return &models.VerifyResponse{
		RaffleID:   raffleID,
		DrawSeed:   r.DrawSeed,
		Reproduced: len(mismatches) == 0,
		Mismatches: mismatches,
	}, nil
}

// snapshot returns the entry list with ranges allocated. Drawn raffles already
// carry persisted ranges; they are re-derived here all the same, which also
// revalidates the tiling invariant before any angle math.
func (s *Service) snapshot(ctx context.Context, r *models.Raffle) ([]models.Entry, int64, error) {
	entries, err := s.DB.GetEntriesByRaffle(ctx, r.RaffleID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load entries for raffle %s: %w", r.RaffleID, err)
	}
	total, err := raffle.AllocateTickets(entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func diffWinner(stored, recomputed models.Winner) string {
	switch {
	case stored.EntryID != recomputed.EntryID:
		return fmt.Sprintf("entry: stored %s, recomputed %s", stored.EntryID, recomputed.EntryID)
	case stored.UserID != recomputed.UserID:
		return fmt.Sprintf("user: stored %s, recomputed %s", stored.UserID, recomputed.UserID)
	case stored.SelectedTicketIndex != recomputed.SelectedTicketIndex:
		return fmt.Sprintf("ticket: stored %d, recomputed %d", stored.SelectedTicketIndex, recomputed.SelectedTicketIndex)
	case stored.TicketRangeStart != recomputed.TicketRangeStart || stored.TicketRangeEnd != recomputed.TicketRangeEnd:
		return fmt.Sprintf("range: stored [%d,%d), recomputed [%d,%d)",
			stored.TicketRangeStart, stored.TicketRangeEnd, recomputed.TicketRangeStart, recomputed.TicketRangeEnd)
	}
	return ""
}
