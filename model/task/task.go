package task

import "context"

// Task is implemented by every task kind. Name is the stable identifier used
// as registry key and wire tag; Run is a synchronous computation over the
// argument.
type Task[A, R any] interface {
	Name() string
	Run(ctx context.Context, arg A) (R, error)
}

// Func adapts a plain function to the Task interface.
type Func[A, R any] struct {
	ID string
	Fn func(ctx context.Context, arg A) (R, error)
}

// Name returns the task identifier
func (f *Func[A, R]) Name() string { return f.ID }

// Run calls the wrapped function
func (f *Func[A, R]) Run(ctx context.Context, arg A) (R, error) { return f.Fn(ctx, arg) }

// New creates a function backed task
func New[A, R any](name string, fn func(ctx context.Context, arg A) (R, error)) *Func[A, R] {
	return &Func[A, R]{ID: name, Fn: fn}
}

// Invocation is a task instance built from a signature. It owns the signature
// it was created with.
type Invocation[A, R any] struct {
	task      Task[A, R]
	signature *Signature[A]
}

// NewInvocation binds task with signature; the caller must not reuse signature.
func NewInvocation[A, R any](task Task[A, R], signature *Signature[A]) *Invocation[A, R] {
	return &Invocation[A, R]{task: task, signature: signature}
}

// Signature returns the signature used to create the invocation
func (i *Invocation[A, R]) Signature() *Signature[A] {
	return i.signature
}

// Task returns the invoked task
func (i *Invocation[A, R]) Task() Task[A, R] {
	return i.task
}

// Run runs the task with the signature argument
func (i *Invocation[A, R]) Run(ctx context.Context) (R, error) {
	return i.task.Run(ctx, i.signature.Arg)
}
