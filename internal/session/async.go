package session

import (
	"context"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
)

// Pending is a session start running in the background.
type Pending struct {
	cancel context.CancelFunc
	done   chan struct{}

	session *Session
	err     error
}

// StartAsync runs Start in its own goroutine. Cancel discards the work; the
// pool and the job are never modified so nothing needs to be rolled back.
func StartAsync(ctx context.Context, engine *scoring.Engine, job recruit.Job, pool []recruit.Candidate, opts Options) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer cancel()
		p.session, p.err = Start(ctx, engine, job, pool, opts)
	}()

	return p
}

// Wait blocks until the session is scored or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Session, error) {
	select {
	case <-p.done:
		return p.session, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) Cancel() { p.cancel() }

// Done is closed once the background start returns.
func (p *Pending) Done() <-chan struct{} { return p.done }
