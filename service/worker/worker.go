// Package worker pulls queued task messages from the broker and dispatches
// them through a frozen registry. Each worker publishes its presence
// (Pending, Running, Stopped) and obeys commands sent to its own queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/tasq/internal/clock"
	"github.com/viant/tasq/internal/idgen"
	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/registry"
	"go.uber.org/zap"
)

// DefaultBackoff is the idle wait used when the task queue is empty
const DefaultBackoff = 500 * time.Millisecond

// Worker runs tasks for one App
type Worker struct {
	id      string
	app     *registry.App
	broker  broker.Broker
	logger  *zap.Logger
	metrics *metrics.Metrics
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error

	mux    sync.Mutex
	state  message.WorkerState
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a worker and publishes it as Pending
func New(ctx context.Context, app *registry.App, opts ...Option) (*Worker, error) {
	ret := &Worker{
		id:      idgen.New(),
		app:     app,
		broker:  app.Broker(),
		logger:  app.Logger(),
		metrics: app.Metrics(),
		backoff: DefaultBackoff,
		sleep:   clock.Sleep,
		state:   message.WorkerStatePending,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.logger = ret.logger.With(zap.String("worker", ret.id))
	if err := ret.publish(ctx, message.WorkerStatePending); err != nil {
		return nil, err
	}
	ret.metrics.WorkerTransition("", message.WorkerStatePending)
	ret.logger.Debug("worker created")
	return ret, nil
}

// ID returns the worker id
func (w *Worker) ID() string {
	return w.id
}

// State returns the current worker state
func (w *Worker) State() message.WorkerState {
	w.mux.Lock()
	defer w.mux.Unlock()
	return w.state
}

// Listen publishes Running and processes messages until a StopWorker command
// arrives (nil), a broker or dispatch error occurs, ctx is done or Close is
// called (nil). Stopped is published on every exit except one caused by
// Close. A worker listens at most once.
func (w *Worker) Listen(ctx context.Context) (err error) {
	loopCtx, err := w.start(ctx)
	if err != nil {
		return err
	}
	defer w.stop(ctx, &err)
	if err = w.publish(loopCtx, message.WorkerStateRunning); err != nil {
		return err
	}
	w.logger.Info("worker listening")
	var command *message.Command
	var msg *message.Message
	for {
		if err = loopCtx.Err(); err != nil {
			return err
		}
		command, err = w.broker.PopCommand(loopCtx, w.id)
		if err != nil {
			return err
		}
		if command != nil && *command == message.StopWorker {
			w.logger.Info("stop command received")
			return nil
		}
		msg, err = w.broker.PopMessage(loopCtx)
		if err != nil {
			return err
		}
		if msg == nil {
			if err = w.sleep(loopCtx, w.backoff); err != nil {
				return err
			}
			continue
		}
		if err = w.app.Dispatch(loopCtx, msg); err != nil {
			w.logger.Error("dispatch failed", zap.String("task", msg.TaskID), zap.Error(err))
			return err
		}
	}
}

// RunOnce dispatches one queued message or returns ErrQueueEmpty
func (w *Worker) RunOnce(ctx context.Context) error {
	if w.State() == message.WorkerStateStopped {
		return ErrWorkerStopped
	}
	msg, err := w.broker.PopMessage(ctx)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrQueueEmpty
	}
	return w.app.Dispatch(ctx, msg)
}

// Close ends a running Listen loop, waits for it to exit and removes the
// worker presence entry. Failures are logged, not returned.
// Close marks the worker stopped; calling it again does nothing.
func (w *Worker) Close(ctx context.Context) {
	w.mux.Lock()
	if w.closed {
		w.mux.Unlock()
		return
	}
	w.closed = true
	cancel, done := w.cancel, w.done
	w.mux.Unlock()

	accounted := true
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			// the loop still owns its Running to Stopped transition
			accounted = false
			w.logger.Warn("listen loop did not exit before close deadline", zap.Error(ctx.Err()))
		}
	}

	w.mux.Lock()
	previous := w.state
	w.state = message.WorkerStateStopped
	w.mux.Unlock()
	if accounted {
		w.metrics.WorkerTransition(previous, "")
	}
	if err := w.broker.RemoveWorkerInfo(context.WithoutCancel(ctx), w.id); err != nil {
		w.logger.Warn("failed to remove worker info", zap.Error(err))
		return
	}
	w.logger.Debug("worker removed")
}

// start moves the worker to Running and derives the loop context Close cancels
func (w *Worker) start(ctx context.Context) (context.Context, error) {
	w.mux.Lock()
	defer w.mux.Unlock()
	if w.closed {
		return nil, ErrWorkerStopped
	}
	switch w.state {
	case message.WorkerStateStopped:
		return nil, ErrWorkerStopped
	case message.WorkerStateRunning:
		return nil, ErrWorkerRunning
	}
	w.state = message.WorkerStateRunning
	w.metrics.WorkerTransition(message.WorkerStatePending, message.WorkerStateRunning)
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	return loopCtx, nil
}

// stop publishes Stopped even when ctx is already cancelled. A closed worker
// publishes nothing since Close owns the presence entry.
func (w *Worker) stop(ctx context.Context, err *error) {
	w.mux.Lock()
	w.state = message.WorkerStateStopped
	closed := w.closed
	cancel, done := w.cancel, w.done
	w.mux.Unlock()
	defer close(done)
	defer cancel()
	w.metrics.WorkerTransition(message.WorkerStateRunning, message.WorkerStateStopped)

	if closed {
		if errors.Is(*err, context.Canceled) && ctx.Err() == nil {
			*err = nil
		}
	} else if pubErr := w.publish(context.WithoutCancel(ctx), message.WorkerStateStopped); pubErr != nil {
		w.logger.Warn("failed to publish stopped state", zap.Error(pubErr))
		if *err == nil {
			*err = pubErr
		}
	}
	if *err != nil {
		w.logger.Info("worker stopped", zap.Error(*err))
		return
	}
	w.logger.Info("worker stopped")
}

func (w *Worker) publish(ctx context.Context, state message.WorkerState) error {
	if err := w.broker.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: w.id, State: state}); err != nil {
		return fmt.Errorf("failed to publish worker %v state %v: %w", w.id, state, err)
	}
	return nil
}
