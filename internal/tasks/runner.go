// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrShuttingDown is returned by Run once shutdown has begun.
var ErrShuttingDown = errors.New("task runner is shutting down")

// =============================================================================
// TASK RUNNER
// =============================================================================

// Runner executes tasks on their own goroutines and keeps a bounded
// history of finished ones.
type Runner struct {
	mu         sync.Mutex
	tasks      []*Task
	maxHistory int
	draining   bool

	wg      sync.WaitGroup
	baseCtx context.Context
	stop    context.CancelFunc

	logger *slog.Logger
}

// NewRunner creates a task runner keeping up to 50 finished tasks.
func NewRunner(logger *slog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		maxHistory: 50,
		baseCtx:    ctx,
		stop:       cancel,
		logger:     logger,
	}
}

// Run starts fn as a background task and returns it immediately. The
// task's context is cancelled when the task is cancelled or the runner
// shuts down. Fails with ErrShuttingDown after Shutdown has begun.
func (r *Runner) Run(description string, fn TaskFunc) (*Task, error) {
	task := NewTask(description, fn)

	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		return nil, ErrShuttingDown
	}
	r.tasks = append(r.tasks, task)
	r.trimHistory()
	r.wg.Add(1)
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(r.baseCtx)
	task.mu.Lock()
	task.cancel = cancel
	task.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()

		// A task cancelled before it started never runs
		if err := task.setStatus(TaskStatusRunning, nil); err != nil {
			return
		}
		r.logger.Debug("task started", "id", task.ID, "description", description)

		err := task.fn(ctx)
		switch {
		case err == nil:
			task.setStatus(TaskStatusComplete, nil)
			r.logger.Debug("task complete", "id", task.ID,
				"duration", task.Duration())
		case errors.Is(err, context.Canceled):
			task.setStatus(TaskStatusCanceled, err)
			r.logger.Debug("task canceled", "id", task.ID)
		default:
			task.setStatus(TaskStatusFailed, err)
			r.logger.Warn("task failed", "id", task.ID,
				"description", description, "error", err)
		}
	}()

	return task, nil
}

// trimHistory drops the oldest terminal tasks beyond maxHistory (lock held).
func (r *Runner) trimHistory() {
	if len(r.tasks) <= r.maxHistory {
		return
	}
	kept := make([]*Task, 0, len(r.tasks))
	excess := len(r.tasks) - r.maxHistory
	for _, t := range r.tasks {
		if excess > 0 && t.IsTerminal() {
			excess--
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
}

// Tasks returns the known tasks, oldest first.
func (r *Runner) Tasks() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Running returns the number of tasks currently executing.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.Status() == TaskStatusRunning {
			n++
		}
	}
	return n
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown stops accepting new tasks and waits up to deadline for running
// ones to finish. Tasks still running at the deadline have their contexts
// cancelled and are abandoned; returns false in that case.
func (r *Runner) Shutdown(deadline time.Duration) bool {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.stop()
		return true
	case <-time.After(deadline):
		r.logger.Warn("shutdown deadline reached, abandoning tasks",
			"running", r.Running())
		r.stop()
		return false
	}
}
