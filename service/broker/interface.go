package broker

import (
	"context"

	"github.com/viant/tasq/model/message"
)

// Vendor represents the name of a broker backend
type Vendor string

// Supported broker vendors
const (
	// VendorMemory keeps everything in process memory
	VendorMemory Vendor = "memory"
	// VendorFs stores queues as files on an afs storage URL
	VendorFs Vendor = "fs"
	// VendorPostgres stores queues in postgres tables
	VendorPostgres Vendor = "postgres"
	// VendorRedis stores queues in redis lists and hashes
	VendorRedis Vendor = "redis"
)

// Broker is the storage contract used by the registry and workers. No
// operation spans a transaction across two primitives. Messages pushed by one
// producer are popped in push order.
type Broker interface {
	// PushMessage appends a task message to the shared queue
	PushMessage(ctx context.Context, msg *message.Message) error

	// PopMessage removes and returns the oldest task message or nil
	PopMessage(ctx context.Context) (*message.Message, error)

	// PushCommand appends a command to the worker command queue
	PushCommand(ctx context.Context, command message.Command, workerID string) error

	// PopCommand removes and returns the oldest command for workerID or nil
	PopCommand(ctx context.Context, workerID string) (*message.Command, error)

	// StoreResult stores a result under its signature id, replacing any
	// previous one
	StoreResult(ctx context.Context, result *message.Result) error

	// LoadResult returns the result for signatureID or nil
	LoadResult(ctx context.Context, signatureID string) (*message.Result, error)

	// UpdateWorkerInfo stores or replaces the worker presence entry
	UpdateWorkerInfo(ctx context.Context, info *message.WorkerInfo) error

	// RemoveWorkerInfo deletes the worker presence entry
	RemoveWorkerInfo(ctx context.Context, workerID string) error

	// LoadWorkerInfo returns the worker presence entry or nil
	LoadWorkerInfo(ctx context.Context, workerID string) (*message.WorkerInfo, error)

	// ListWorkers returns all worker presence entries
	ListWorkers(ctx context.Context) ([]*message.WorkerInfo, error)
}
