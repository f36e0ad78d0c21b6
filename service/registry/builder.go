// Package registry maps task identifiers to runner builders. A mutable
// Builder collects registrations during startup; Freeze produces the
// immutable App that producers and workers share.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/tasq/metrics"
	"github.com/viant/tasq/model/task"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/runner"
	"github.com/viant/x"
	"go.uber.org/zap"
)

// TaskKind describes a registered task
type TaskKind struct {
	Name   string  `json:"name"`
	Arg    *x.Type `json:"-"`
	Result *x.Type `json:"-"`
}

// ArgType returns the argument Go type name
func (k *TaskKind) ArgType() string {
	return typeName(k.Arg)
}

// ResultType returns the result Go type name
func (k *TaskKind) ResultType() string {
	return typeName(k.Result)
}

func typeName(t *x.Type) string {
	if t == nil || t.Type == nil {
		return ""
	}
	return t.Type.String()
}

type entry struct {
	kind    *TaskKind
	builder runner.Builder
}

// Builder collects task registrations until frozen
type Builder struct {
	broker  broker.Broker
	logger  *zap.Logger
	metrics *metrics.Metrics
	mux     sync.Mutex
	tasks   map[string]*entry
	frozen  bool
}

// NewBuilder creates a registry builder bound to a broker
func NewBuilder(b broker.Broker, opts ...Option) *Builder {
	ret := &Builder{
		broker: b,
		logger: zap.NewNop(),
		tasks:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Register binds the task name to a runner builder. Registering the same name
// again replaces the earlier binding.
func Register[A, R any](b *Builder, aTask task.Task[A, R]) error {
	b.mux.Lock()
	defer b.mux.Unlock()
	if b.frozen {
		return fmt.Errorf("%w: cannot register %v", ErrFrozen, aTask.Name())
	}
	b.tasks[aTask.Name()] = &entry{
		kind: &TaskKind{
			Name:   aTask.Name(),
			Arg:    x.NewType(reflect.TypeOf((*A)(nil)).Elem()),
			Result: x.NewType(reflect.TypeOf((*R)(nil)).Elem()),
		},
		builder: runner.NewBuilder[A, R](aTask),
	}
	b.logger.Debug("registered task", zap.String("task", aTask.Name()))
	return nil
}

// Freeze returns an immutable App with a copy of the registrations; further
// Register calls fail with ErrFrozen.
func (b *Builder) Freeze() *App {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.frozen = true
	tasks := make(map[string]*entry, len(b.tasks))
	for k, v := range b.tasks {
		tasks[k] = v
	}
	return &App{
		broker:  b.broker,
		logger:  b.logger,
		metrics: b.metrics,
		tasks:   tasks,
	}
}
