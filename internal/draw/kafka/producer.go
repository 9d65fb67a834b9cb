package kafka

import (
	"context"
	"encoding/json"
	"time"

	"ms-raffle/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// DrawCompletedEvent is the payload the dashboard and notification consumers
// receive after a draw persists. It carries everything needed to render the
// reveal without a follow-up query.
type DrawCompletedEvent struct {
	RaffleID        string          `json:"raffle_id"`
	DrawSeed        string          `json:"draw_seed"`
	NumberOfWinners int             `json:"number_of_winners"`
	Winners         []models.Winner `json:"winners"`
	CompletedAt     time.Time       `json:"completed_at"`
}

// PublishDrawCompleted streams the finished draw to Kafka.
func (p *Producer) PublishDrawCompleted(raffle models.Raffle, winners []models.Winner) error {
	event := DrawCompletedEvent{
		RaffleID:        raffle.RaffleID,
		DrawSeed:        raffle.DrawSeed,
		NumberOfWinners: raffle.NumberOfWinners,
		Winners:         winners,
		CompletedAt:     time.Now(),
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(raffle.RaffleID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
