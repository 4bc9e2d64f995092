package core

import (
	"context"
	"time"
)

// Pending is a scheduled job that has not necessarily finished.
type Pending struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job has run and returns its error.
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

// Done is closed once the job has run.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Schedule runs job once after delay on a background goroutine. The job receives a
// context detached from any caller and always runs to completion; there is no
// cancellation and no timeout. Workspace commands the job calls are serialized with all
// other commands. Close waits for outstanding jobs.
func (w *Workspace) Schedule(delay time.Duration, job func(context.Context) error) *Pending {
	p := &Pending{done: make(chan struct{})}
	w.jobs.Add(1)
	go func() {
		defer w.jobs.Done()
		defer close(p.done)
		if delay > 0 {
			time.Sleep(delay)
		}
		p.err = job(context.Background())
		if p.err != nil {
			w.log.WithError(p.err).Warn("scheduled job failed")
		}
	}()
	return p
}
