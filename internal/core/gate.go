package core

// gate.go keeps runs from overlapping.
//
// Runs against one sheet are single-flight: two at once would interleave
// marker writes and could stage the same order twice. CLI and HTTP callers
// wait up to maxWait for the gate and then fail with ErrRunInProgress. The
// scheduler uses TryAcquire and skips its tick instead of queueing behind a
// run that is still going.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunInProgress is returned when the gate stays closed past maxWait.
var ErrRunInProgress = errors.New("a run is already in progress")

// DefaultMaxWait is how long Acquire waits for a running run to finish.
const DefaultMaxWait = 30 * time.Second

// RunGate admits one run at a time.
type RunGate struct {
	slot    chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	since   time.Time // start of the current run; zero when idle
	waiting int
}

// NewRunGate creates an open gate. A non-positive maxWait uses DefaultMaxWait.
func NewRunGate(maxWait time.Duration) *RunGate {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &RunGate{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire waits for the gate. It returns ErrRunInProgress after maxWait, or
// the context error if ctx ends first. Callers must Release on success.
func (g *RunGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	g.waiting++
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.waiting--
		g.mu.Unlock()
	}()

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
		g.enter()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrRunInProgress
	}
}

// TryAcquire takes the gate only if no run is active right now.
func (g *RunGate) TryAcquire() bool {
	select {
	case g.slot <- struct{}{}:
		g.enter()
		return true
	default:
		return false
	}
}

func (g *RunGate) enter() {
	g.mu.Lock()
	g.since = time.Now()
	g.mu.Unlock()
}

// Release reopens the gate after Acquire or TryAcquire.
func (g *RunGate) Release() {
	g.mu.Lock()
	g.since = time.Time{}
	g.mu.Unlock()
	<-g.slot
}

// Running reports whether a run holds the gate.
func (g *RunGate) Running() bool {
	return len(g.slot) > 0
}

// WaitIdle blocks until no run holds the gate or ctx ends. It briefly takes
// the gate itself, so a concurrent TryAcquire may see it closed.
func (g *RunGate) WaitIdle(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		<-g.slot
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunGateStatus is a snapshot of the gate for health checks.
type RunGateStatus struct {
	Running bool       `json:"running"`
	Since   *time.Time `json:"since,omitempty"`
	Waiting int        `json:"waiting"`
}

// Status returns the current gate state.
func (g *RunGate) Status() RunGateStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := RunGateStatus{Waiting: g.waiting}
	if !g.since.IsZero() {
		since := g.since
		st.Running = true
		st.Since = &since
	}
	return st
}
