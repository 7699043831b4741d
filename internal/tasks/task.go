// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus represents the current state of a background task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is waiting to be executed
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusRunning indicates the task is currently executing
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusComplete indicates the task finished successfully
	TaskStatusComplete TaskStatus = "Complete"

	// TaskStatusFailed indicates the task encountered an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled indicates the task was canceled
	TaskStatusCanceled TaskStatus = "Canceled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// TaskFunc is the work a task performs. It must honor ctx cancellation.
type TaskFunc func(ctx context.Context) error

// Task represents a background task that runs without blocking the UI.
type Task struct {
	// ID is a unique identifier for this task
	ID string

	// Description is a human-readable description of what this task does
	Description string

	fn TaskFunc

	mu        sync.RWMutex
	status    TaskStatus
	startTime time.Time
	endTime   time.Time
	err       error
	cancel    context.CancelFunc

	// done closes when the task reaches a terminal state
	done chan struct{}
}

// NewTask creates a queued task around fn.
func NewTask(description string, fn TaskFunc) *Task {
	return &Task{
		ID:          uuid.New().String(),
		Description: description,
		fn:          fn,
		status:      TaskStatusQueued,
		done:        make(chan struct{}),
	}
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// isValidTransition checks a status transition (lock held).
// Valid transitions: Queued -> Running -> Complete/Failed/Canceled, and
// Queued -> Canceled for tasks killed before they start.
func isValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case TaskStatusQueued:
		return to == TaskStatusRunning || to == TaskStatusCanceled
	case TaskStatusRunning:
		return to == TaskStatusComplete || to == TaskStatusFailed || to == TaskStatusCanceled
	default:
		// Terminal states never transition
		return false
	}
}

// setStatus moves the task to status, closing done on terminal states.
func (t *Task) setStatus(status TaskStatus, err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidTransition(t.status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", t.status, status)
	}
	if t.status == status {
		return nil
	}

	t.status = status
	switch status {
	case TaskStatusRunning:
		t.startTime = time.Now()
	case TaskStatusComplete, TaskStatusFailed, TaskStatusCanceled:
		t.err = err
		t.endTime = time.Now()
		close(t.done)
	}
	return nil
}

// =============================================================================
// TASK METHODS
// =============================================================================

// Status returns the current task status (thread-safe).
func (t *Task) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Err returns the task error, nil until the task fails (thread-safe).
func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Done returns a channel that closes when the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel cancels the task. Queued tasks move straight to Canceled; running
// tasks get their context cancelled and report Canceled when they return.
// Returns false if the task was already terminal.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	status := t.status
	cancel := t.cancel
	t.mu.Unlock()

	switch status {
	case TaskStatusQueued:
		return t.setStatus(TaskStatusCanceled, context.Canceled) == nil
	case TaskStatusRunning:
		if cancel != nil {
			cancel()
		}
		return true
	default:
		return false
	}
}

// Duration returns how long the task has been running or took to complete.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.startTime.IsZero() {
		return 0
	}
	if t.endTime.IsZero() {
		return time.Since(t.startTime)
	}
	return t.endTime.Sub(t.startTime)
}

// IsTerminal returns true once the task has finished, failed, or been canceled.
func (t *Task) IsTerminal() bool {
	status := t.Status()
	return status == TaskStatusComplete || status == TaskStatusFailed || status == TaskStatusCanceled
}

// Summary returns a one-line summary of the task.
func (t *Task) Summary() string {
	summary := fmt.Sprintf("[%s] %s - %s", t.ID[:8], t.Description, t.Status())
	if d := t.Duration(); d > 0 {
		summary += fmt.Sprintf(" (%.1fs)", d.Seconds())
	}
	return summary
}
