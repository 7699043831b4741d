// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// STATUS TRANSITION TESTS
// =============================================================================

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		valid    bool
	}{
		{TaskStatusQueued, TaskStatusRunning, true},
		{TaskStatusQueued, TaskStatusCanceled, true},
		{TaskStatusQueued, TaskStatusComplete, false},
		{TaskStatusRunning, TaskStatusComplete, true},
		{TaskStatusRunning, TaskStatusFailed, true},
		{TaskStatusRunning, TaskStatusCanceled, true},
		{TaskStatusComplete, TaskStatusRunning, false},
		{TaskStatusFailed, TaskStatusRunning, false},
		{TaskStatusCanceled, TaskStatusQueued, false},
		{TaskStatusRunning, TaskStatusRunning, true},
	}

	for _, tt := range tests {
		if got := isValidTransition(tt.from, tt.to); got != tt.valid {
			t.Errorf("isValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestRunner_TaskCompletes(t *testing.T) {
	runner := NewRunner(testLogger())

	task, err := runner.Run("work", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	<-task.Done()
	if task.Status() != TaskStatusComplete {
		t.Errorf("Status = %s, want Complete", task.Status())
	}
	if task.Err() != nil {
		t.Errorf("Err = %v, want nil", task.Err())
	}
}

func TestRunner_TaskFails(t *testing.T) {
	runner := NewRunner(testLogger())
	boom := errors.New("boom")

	task, _ := runner.Run("work", func(ctx context.Context) error {
		return boom
	})

	<-task.Done()
	if task.Status() != TaskStatusFailed {
		t.Errorf("Status = %s, want Failed", task.Status())
	}
	if !errors.Is(task.Err(), boom) {
		t.Errorf("Err = %v, want boom", task.Err())
	}
}

func TestRunner_TaskCanceled(t *testing.T) {
	runner := NewRunner(testLogger())
	started := make(chan struct{})

	task, _ := runner.Run("work", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	if !task.Cancel() {
		t.Fatal("Cancel returned false for running task")
	}

	<-task.Done()
	if task.Status() != TaskStatusCanceled {
		t.Errorf("Status = %s, want Canceled", task.Status())
	}
}

func TestRunner_CancelTerminalTask(t *testing.T) {
	runner := NewRunner(testLogger())

	task, _ := runner.Run("work", func(ctx context.Context) error { return nil })
	<-task.Done()

	if task.Cancel() {
		t.Error("Cancel must return false for a terminal task")
	}
}

// =============================================================================
// SHUTDOWN TESTS
// =============================================================================

func TestShutdown_Drains(t *testing.T) {
	runner := NewRunner(testLogger())

	task, _ := runner.Run("quick", func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	if !runner.Shutdown(2 * time.Second) {
		t.Fatal("Shutdown should drain within deadline")
	}
	if task.Status() != TaskStatusComplete {
		t.Errorf("Status = %s, want Complete after drain", task.Status())
	}
}

func TestShutdown_RejectsNewTasks(t *testing.T) {
	runner := NewRunner(testLogger())
	runner.Shutdown(time.Second)

	_, err := runner.Run("late", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrShuttingDown) {
		t.Errorf("err = %v, want ErrShuttingDown", err)
	}
}

func TestShutdown_AbandonsAtDeadline(t *testing.T) {
	runner := NewRunner(testLogger())
	release := make(chan struct{})
	started := make(chan struct{})

	task, _ := runner.Run("stuck", func(ctx context.Context) error {
		close(started)
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	<-started

	if runner.Shutdown(20 * time.Millisecond) {
		t.Fatal("Shutdown should report abandonment")
	}
	close(release)

	// The abandoned task's context was cancelled at shutdown
	<-task.Done()
	if task.Status() != TaskStatusCanceled {
		t.Errorf("Status = %s, want Canceled", task.Status())
	}
}
