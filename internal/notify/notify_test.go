package notify

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testEvent() Event {
	return Event{
		Type:        EventCandidateShortlisted,
		JobID:       "j1",
		CandidateID: "c1",
		DecidedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestEventMarshal(t *testing.T) {
	t.Parallel()

	body, err := testEvent().Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"type":        EventCandidateShortlisted,
		"jobId":       "j1",
		"candidateId": "c1",
		"decidedAt":   "2024-05-01T10:00:00Z",
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Fatalf("%s: expected %q, got %q", k, v, decoded[k])
		}
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
		check   func(t *testing.T, p Publisher)
	}{
		{
			name: "default logs",
			cfg:  Config{},
			check: func(t *testing.T, p Publisher) {
				if _, ok := p.(*LogPublisher); !ok {
					t.Fatalf("expected log publisher, got %T", p)
				}
			},
		},
		{
			name: "none",
			cfg:  Config{Backend: "None"},
			check: func(t *testing.T, p Publisher) {
				if _, ok := p.(Nop); !ok {
					t.Fatalf("expected nop publisher, got %T", p)
				}
			},
		},
		{name: "redis without url", cfg: Config{Backend: "redis"}, wantErr: "redis url is required"},
		{name: "amqp without url", cfg: Config{Backend: "amqp"}, wantErr: "amqp url is required"},
		{name: "unknown", cfg: Config{Backend: "kafka"}, wantErr: "unknown notify backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Open(context.Background(), tt.cfg, nil)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer p.Close()
			tt.check(t, p)
		})
	}
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("event published").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["type"] != EventCandidateShortlisted || ctx["candidate_id"] != "c1" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}

func TestRedisPublisherReportsFailure(t *testing.T) {
	t.Parallel()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	p := newRedisPublisher(rdb, "")
	defer p.Close()

	if p.channel != EventCandidateShortlisted {
		t.Fatalf("expected default channel, got %q", p.channel)
	}

	err := p.Publish(context.Background(), testEvent())
	if err == nil || !strings.Contains(err.Error(), "publish EVENT_CANDIDATE_SHORTLISTED to redis") {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestAMQPRoutingKey(t *testing.T) {
	t.Parallel()

	direct := &AMQPPublisher{queue: defaultQueue}
	if got := direct.routingKey(testEvent()); got != defaultQueue {
		t.Fatalf("expected queue routing key, got %q", got)
	}

	topic := &AMQPPublisher{exchange: "recruit", queue: defaultQueue}
	if got := topic.routingKey(testEvent()); got != "shortlist.j1" {
		t.Fatalf("expected topic routing key, got %q", got)
	}
}
