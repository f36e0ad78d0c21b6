// Package runner bridges statically typed tasks into the string keyed
// registry. A Builder is captured once per task kind at registration time; it
// is the only place where compile-time types cross into the runtime registry.
package runner

import (
	"context"
	"fmt"

	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/model/task"
)

// ResultStore persists a completed invocation result
type ResultStore interface {
	StoreResult(ctx context.Context, result *message.Result) error
}

// Runner executes one resolved invocation
type Runner interface {
	// Run decodes the signature, runs the task and stores its result. Nothing
	// is stored when any step fails.
	Run(ctx context.Context, store ResultStore) error
}

// Builder creates a Runner from an encoded signature
type Builder func(signature string) (Runner, error)

// NewBuilder returns a builder bound to the task argument and return types
func NewBuilder[A, R any](aTask task.Task[A, R]) Builder {
	return func(signature string) (Runner, error) {
		return &typed[A, R]{task: aTask, signature: signature}, nil
	}
}

type typed[A, R any] struct {
	task      task.Task[A, R]
	signature string
}

// Run runs the typed invocation
func (r *typed[A, R]) Run(ctx context.Context, store ResultStore) error {
	signature, err := task.DecodeSignature[A](r.signature)
	if err != nil {
		return err
	}
	invocation := task.NewInvocation(r.task, signature)
	output, err := invocation.Run(ctx)
	if err != nil {
		return fmt.Errorf("task %v (%v) failed: %w", r.task.Name(), signature.ID, err)
	}
	encoded, err := task.Encode(output)
	if err != nil {
		return err
	}
	return store.StoreResult(ctx, &message.Result{
		SignatureID: invocation.Signature().ID,
		Result:      encoded,
	})
}
