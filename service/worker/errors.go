package worker

import "errors"

var (
	// ErrQueueEmpty is returned by RunOnce when no message is queued
	ErrQueueEmpty = errors.New("worker: queue is empty")

	// ErrWorkerStopped is returned when a stopped worker is asked to run
	ErrWorkerStopped = errors.New("worker: worker is stopped")

	// ErrWorkerRunning is returned by Listen when the worker already listens
	ErrWorkerRunning = errors.New("worker: worker is already running")
)
