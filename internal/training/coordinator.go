// Package training serializes retraining of the face recognition model.
// Enrollment changes request a retrain; a single background worker runs the
// external trainer, and requests arriving mid-run coalesce into one follow-up
// run instead of spawning competing writers of the model artifact.
package training

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunState is the lifecycle state of one training run.
type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunStatus describes one training run for the operator surface.
type RunStatus struct {
	ID          string     `json:"id"`
	State       RunState   `json:"state"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Coordinator owns the in-flight training job lifecycle. At most one run is
// active at a time; RequestRetrain never blocks the caller and training
// failures never propagate back to it.
type Coordinator struct {
	trainer Trainer

	signal chan struct{}
	stop   context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	lastRun *RunStatus
	started bool
}

// NewCoordinator creates a coordinator for the given trainer.
func NewCoordinator(trainer Trainer) *Coordinator {
	return &Coordinator{
		trainer: trainer,
		// Capacity 1: a request during a run parks here and merges with any
		// further requests until the worker picks it up.
		signal: make(chan struct{}, 1),
	}
}

// Start launches the worker loop. It returns immediately.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	ctx, c.stop = context.WithCancel(ctx)
	c.mu.Unlock()

	c.wg.Add(1)
	go c.loop(ctx)
}

// Stop shuts the worker down and waits for an in-flight run to finish. The
// run itself is never cancelled: a launched training pass always runs to
// completion or failure so the model artifact is never abandoned mid-write.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
	c.wg.Wait()
}

// RequestRetrain schedules a model rebuild. Fire-and-forget: if a run is
// already queued the request coalesces with it and this call is a no-op.
func (c *Coordinator) RequestRetrain() {
	select {
	case c.signal <- struct{}{}:
	default:
		// A run is already pending; this request merges into it.
	}
}

// LastRun returns the most recent run status, or nil if no run has started.
func (c *Coordinator) LastRun() *RunStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRun == nil {
		return nil
	}
	status := *c.lastRun
	return &status
}

func (c *Coordinator) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.signal:
			// ctx only gates loop exit. The run gets a detached context so
			// shutdown cannot kill the trainer subprocess mid-artifact.
			c.run(context.WithoutCancel(ctx))
		}
	}
}

// run executes one training pass. Panics and errors are contained here so a
// misbehaving trainer can never take down the worker or a request goroutine.
func (c *Coordinator) run(ctx context.Context) {
	id := uuid.New().String()
	started := time.Now()

	c.setLastRun(&RunStatus{ID: id, State: RunStateRunning, StartedAt: started})
	log.Printf("[training %s] model training started", id)

	defer func() {
		if r := recover(); r != nil {
			c.finishRun(id, started, RunStateFailed, "trainer panicked")
			log.Printf("[training %s] trainer panicked: %v", id, r)
		}
	}()

	if err := c.trainer.Train(ctx); err != nil {
		c.finishRun(id, started, RunStateFailed, err.Error())
		log.Printf("[training %s] training failed: %v", id, err)
		return
	}

	c.finishRun(id, started, RunStateCompleted, "")
	log.Printf("[training %s] training completed in %s", id, time.Since(started).Round(time.Millisecond))
}

func (c *Coordinator) setLastRun(status *RunStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRun = status
}

func (c *Coordinator) finishRun(id string, started time.Time, state RunState, errMsg string) {
	completed := time.Now()
	c.setLastRun(&RunStatus{
		ID:          id,
		State:       state,
		StartedAt:   started,
		CompletedAt: &completed,
		Error:       errMsg,
	})
}
