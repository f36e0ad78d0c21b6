// Package memory provides an in-process broker. It is safe for concurrent use
// by any number of producers and workers sharing the same instance.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/dao"
	"github.com/viant/tasq/service/dao/store"
)

// Broker implements broker.Broker in memory
type Broker struct {
	mu       sync.Mutex
	messages []*message.Message
	commands map[string][]message.Command
	results  *store.MemoryStore[string, message.Result]
	workers  *store.MemoryStore[string, message.WorkerInfo]
}

// ensure Broker implements broker.Broker interface
var _ broker.Broker = (*Broker)(nil)

// New creates a memory broker
func New() *Broker {
	return &Broker{
		commands: make(map[string][]message.Command),
		results: store.NewMemoryStore[string, message.Result](
			func(r *message.Result) string { return r.SignatureID },
			(*message.Result).Clone),
		workers: store.NewMemoryStore[string, message.WorkerInfo](
			func(w *message.WorkerInfo) string { return w.ID },
			(*message.WorkerInfo).Clone),
	}
}

// PushMessage appends a message to the task queue
func (b *Broker) PushMessage(ctx context.Context, msg *message.Message) error {
	if msg == nil {
		return dao.ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg.Clone())
	return nil
}

// PopMessage removes the oldest message
func (b *Broker) PopMessage(ctx context.Context) (*message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return nil, nil
	}
	ret := b.messages[0]
	b.messages[0] = nil
	b.messages = b.messages[1:]
	return ret, nil
}

// PushCommand appends a command to the worker queue
func (b *Broker) PushCommand(ctx context.Context, command message.Command, workerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[workerID] = append(b.commands[workerID], command)
	return nil
}

// PopCommand removes the oldest command for the worker
func (b *Broker) PopCommand(ctx context.Context, workerID string) (*message.Command, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	queue := b.commands[workerID]
	if len(queue) == 0 {
		return nil, nil
	}
	command := queue[0]
	if len(queue) == 1 {
		delete(b.commands, workerID)
	} else {
		b.commands[workerID] = queue[1:]
	}
	return &command, nil
}

// StoreResult stores a result
func (b *Broker) StoreResult(ctx context.Context, result *message.Result) error {
	return b.results.Save(ctx, result)
}

// LoadResult loads a result
func (b *Broker) LoadResult(ctx context.Context, signatureID string) (*message.Result, error) {
	return b.results.Load(ctx, signatureID)
}

// UpdateWorkerInfo stores worker info
func (b *Broker) UpdateWorkerInfo(ctx context.Context, info *message.WorkerInfo) error {
	return b.workers.Save(ctx, info)
}

// RemoveWorkerInfo removes worker info
func (b *Broker) RemoveWorkerInfo(ctx context.Context, workerID string) error {
	return b.workers.Delete(ctx, workerID)
}

// LoadWorkerInfo loads worker info
func (b *Broker) LoadWorkerInfo(ctx context.Context, workerID string) (*message.WorkerInfo, error) {
	return b.workers.Load(ctx, workerID)
}

// ListWorkers lists workers ordered by id
func (b *Broker) ListWorkers(ctx context.Context) ([]*message.WorkerInfo, error) {
	workers, err := b.workers.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

// Size returns the number of queued task messages
func (b *Broker) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}
