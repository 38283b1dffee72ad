// Package pipeline runs bundle analyses: a bounded worker pool and the
// four-phase analyzer built on it.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrPoolClosed is returned when Submit is called after Close.
	ErrPoolClosed = errors.New("pipeline: pool closed")
	// ErrPoolCloseTimeout is returned when workers do not drain in time.
	ErrPoolCloseTimeout = errors.New("pipeline: close timed out waiting for workers")
)

var drainTimeout = 30 * time.Second

// Pool executes submitted tasks on a bounded set of goroutines. Workers start
// eagerly; when the backlog is full, extra workers are spawned up to
// maxWorkers, after which Submit blocks until room frees.
type Pool struct {
	tasks      chan func()
	maxWorkers int

	wg sync.WaitGroup

	metrics poolMetrics

	mu      sync.Mutex // guards closed/workers
	closed  bool
	workers int

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPool starts workers goroutines backed by a backlog of the given size.
func NewPool(workers, maxWorkers, backlog int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if maxWorkers < workers {
		maxWorkers = workers
	}
	if backlog < 0 {
		backlog = 0
	}

	p := &Pool{
		tasks:      make(chan func(), backlog),
		maxWorkers: maxWorkers,
		shutdown:   make(chan struct{}),
	}
	p.mu.Lock()
	for i := 0; i < workers; i++ {
		p.spawnLocked(nil)
	}
	p.mu.Unlock()
	return p
}

// Submit schedules task. It blocks while the backlog is full and the pool is
// at maxWorkers.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.metrics.incrementSubmitted()

	select {
	case p.tasks <- task:
		p.mu.Unlock()
		return nil
	default:
	}

	if p.workers < p.maxWorkers {
		p.spawnLocked(task)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.enqueue(task)
}

// Close stops accepting tasks, lets workers drain the backlog and waits for
// them, giving up after drainTimeout.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.tasks)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(drainTimeout):
		return fmt.Errorf("%w after %s", ErrPoolCloseTimeout, drainTimeout)
	}
}

// GetMetrics returns a snapshot of the pool counters.
func (p *Pool) GetMetrics() map[string]interface{} {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	snapshot := p.metrics.snapshot()
	snapshot["workers"] = workers
	return snapshot
}

// StartMetricsReporting emits periodic progress logs until Close.
func (p *Pool) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics := p.GetMetrics()
				slog.Info("worker pool",
					slog.Int("workers", metrics["workers"].(int)),
					slog.Int64("submitted", metrics["submitted_tasks"].(int64)),
					slog.Int64("completed", metrics["completed_tasks"].(int64)),
					slog.Int64("panics", metrics["panics"].(int64)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

// spawnLocked starts a worker that runs first (if any) before draining the
// backlog. p.mu must be held.
func (p *Pool) spawnLocked(first func()) {
	p.workers++
	p.wg.Add(1)
	go p.worker(first)
}

func (p *Pool) worker(first func()) {
	defer p.wg.Done()

	if first != nil {
		p.run(first)
	}
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.incrementPanics()
			slog.Error("task panicked", slog.Any("panic", r))
		}
		p.metrics.incrementCompleted()
	}()
	task()
}

func (p *Pool) enqueue(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPoolClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

func (p *Pool) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type poolMetrics struct {
	mu        sync.Mutex
	submitted int64
	completed int64
	panics    int64
}

func (m *poolMetrics) incrementSubmitted() {
	m.mu.Lock()
	m.submitted++
	m.mu.Unlock()
}

func (m *poolMetrics) incrementCompleted() {
	m.mu.Lock()
	m.completed++
	m.mu.Unlock()
}

func (m *poolMetrics) incrementPanics() {
	m.mu.Lock()
	m.panics++
	m.mu.Unlock()
}

func (m *poolMetrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"submitted_tasks": m.submitted,
		"completed_tasks": m.completed,
		"panics":          m.panics,
	}
}
