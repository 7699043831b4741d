// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
//
// This package implements a task runner for executing background operations
// like availability probes, model refreshes, and generations without
// blocking the interface.
//
// # Key Types
//
//   - Task: Represents a background task with status tracking
//   - Runner: Executes tasks and drains them on shutdown
//   - TaskStatus: Task status enumeration (Queued, Running, Complete, Failed, Canceled)
//
// # Usage
//
// Run a task and wait for completion:
//
//	runner := tasks.NewRunner(logger)
//	task, err := runner.Run("refresh models", func(ctx context.Context) error {
//	    return refresh(ctx)
//	})
//	<-task.Done()
//
// Shut down, waiting up to the deadline for running tasks:
//
//	runner.Shutdown(5 * time.Second)
package tasks
