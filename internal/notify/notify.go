// Package notify publishes shortlist decisions to downstream consumers.
// Publishing is best effort: callers log failures and carry on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const EventCandidateShortlisted = "EVENT_CANDIDATE_SHORTLISTED"

type Event struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	CandidateID string    `json:"candidateId"`
	DecidedAt   time.Time `json:"decidedAt"`
}

func (e Event) Marshal() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return body, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Config selects the publisher backend.
type Config struct {
	// Backend is one of log, redis, amqp or none.
	Backend string `mapstructure:"backend"`
	URL     string `mapstructure:"url"`
	// Channel is the redis channel. Defaults to the event type.
	Channel string `mapstructure:"channel"`
	// Exchange is the amqp topic exchange. When empty events go to Queue
	// through the default exchange.
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// Open builds the publisher described by cfg. An empty backend logs events.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "log":
		return NewLogPublisher(logger), nil
	case "none":
		return Nop{}, nil
	case "redis":
		p, err := NewRedisPublisher(ctx, cfg.URL, cfg.Channel)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "amqp", "rabbitmq":
		p, err := NewAMQPPublisher(cfg.URL, cfg.Exchange, cfg.Queue)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// LogPublisher writes events to the application log.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("event published",
		zap.String("type", event.Type),
		zap.String("job_id", event.JobID),
		zap.String("candidate_id", event.CandidateID),
		zap.Time("decided_at", event.DecidedAt),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
