package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viant/tasq/internal/clock"
	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/tracing"
	"go.uber.org/zap"
)

// DefaultWaitInterval is the WaitResult poll interval when none is given
const DefaultWaitInterval = 100 * time.Millisecond

// App is a frozen registry. It is safe for concurrent use.
type App struct {
	broker  broker.Broker
	logger  *zap.Logger
	metrics *metrics.Metrics
	tasks   map[string]*entry
}

// Broker returns the app broker
func (a *App) Broker() broker.Broker {
	return a.broker
}

// Logger returns the app logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the app metrics or nil
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Has returns true if name is registered
func (a *App) Has(name string) bool {
	_, ok := a.tasks[name]
	return ok
}

// Tasks returns registered task kinds sorted by name
func (a *App) Tasks() []*TaskKind {
	ret := make([]*TaskKind, 0, len(a.tasks))
	for _, e := range a.tasks {
		ret = append(ret, e.kind)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// Dispatch runs the task named by msg and stores its result
func (a *App) Dispatch(ctx context.Context, msg *message.Message) (err error) {
	taskID := ""
	if msg != nil {
		taskID = msg.TaskID
	}
	ctx, span := tracing.StartSpan(ctx, "registry.Dispatch", tracing.KindConsumer)
	span.WithAttributes(map[string]string{tracing.AttrTaskID: taskID})
	started := time.Now()
	defer func() {
		a.metrics.Dispatched(taskID, time.Since(started), err)
		tracing.EndSpan(span, err)
	}()
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrUnknownTask)
	}
	e, ok := a.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownTask, taskID)
	}
	aRunner, err := e.builder(msg.Signature)
	if err != nil {
		return err
	}
	if err = aRunner.Run(ctx, a.broker); err != nil {
		return err
	}
	a.logger.Debug("dispatched task", zap.String("task", msg.TaskID), zap.Duration("elapsed", time.Since(started)))
	return nil
}

// Result returns the stored result for signatureID or nil
func (a *App) Result(ctx context.Context, signatureID string) (*message.Result, error) {
	return a.broker.LoadResult(ctx, signatureID)
}

// WaitResult polls for the signatureID result until it exists or ctx is done
func (a *App) WaitResult(ctx context.Context, signatureID string, interval time.Duration) (*message.Result, error) {
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	for {
		result, err := a.broker.LoadResult(ctx, signatureID)
		if err != nil || result != nil {
			return result, err
		}
		if err = clock.Sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

// QueueCommand pushes a command to the worker command queue
func (a *App) QueueCommand(ctx context.Context, command message.Command, workerID string) error {
	return a.broker.PushCommand(ctx, command, workerID)
}

// ListWorkers returns all worker presence entries
func (a *App) ListWorkers(ctx context.Context) ([]*message.WorkerInfo, error) {
	return a.broker.ListWorkers(ctx)
}

// WorkerInfo returns the worker presence entry or nil
func (a *App) WorkerInfo(ctx context.Context, workerID string) (*message.WorkerInfo, error) {
	return a.broker.LoadWorkerInfo(ctx, workerID)
}
