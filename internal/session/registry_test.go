package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistryWithAndDiscard(t *testing.T) {
	t.Parallel()

	s, err := Start(context.Background(), testEngine(t), testJob(), testPool(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg := NewRegistry(time.Hour, nil)
	reg.Add(s)

	if err := reg.With(s.ID(), func(s *Session) error { return s.Select("a") }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsSelected("a") {
		t.Fatalf("expected selection through registry to stick")
	}

	sentinel := errors.New("boom")
	if err := reg.With(s.ID(), func(*Session) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}

	if !reg.Discard(s.ID()) {
		t.Fatalf("expected discard to report removal")
	}
	if reg.Discard(s.ID()) {
		t.Fatalf("second discard should report nothing removed")
	}

	if err := reg.With(s.ID(), func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryExclusiveAccess(t *testing.T) {
	t.Parallel()

	s, err := Start(context.Background(), testEngine(t), testJob(), testPool(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg := NewRegistry(0, nil)
	reg.Add(s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With(s.ID(), func(s *Session) error {
				_, err := s.Toggle("a")
				return err
			})
		}()
	}
	wg.Wait()

	if s.IsSelected("a") {
		t.Fatalf("an even number of toggles must leave a deselected")
	}
}

func TestRegistrySweep(t *testing.T) {
	t.Parallel()

	engine := testEngine(t)
	idle, _ := Start(context.Background(), engine, testJob(), testPool(), Options{})
	active, _ := Start(context.Background(), engine, testJob(), testPool(), Options{})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(10*time.Minute, nil)
	reg.now = func() time.Time { return now }

	reg.Add(idle)
	reg.Add(active)

	now = now.Add(8 * time.Minute)
	if err := reg.With(active.ID(), func(*Session) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if expired := reg.Sweep(); expired != 1 {
		t.Fatalf("expected 1 expired session, got %d", expired)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 session left, got %d", reg.Len())
	}
	if err := reg.With(idle.ID(), func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected idle session to be gone, got %v", err)
	}
}

func TestRegistryStartStop(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(time.Minute, nil)
	if err := reg.Start("not a schedule"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}

	if err := reg.Start(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg.Stop()
	reg.Stop()
}
