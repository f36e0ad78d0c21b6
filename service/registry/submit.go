package registry

import (
	"context"
	"fmt"

	"github.com/viant/tasq/internal/idgen"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/model/task"
	"github.com/viant/tasq/tracing"
	"go.uber.org/zap"
)

// Submit queues aTask with arg and returns the new signature id. The task
// must be registered with the app; no broker write happens otherwise.
func Submit[A, R any](ctx context.Context, app *App, aTask task.Task[A, R], arg A) (id string, err error) {
	taskID := aTask.Name()
	if !app.Has(taskID) {
		return "", fmt.Errorf("%w: %v", ErrUnregisteredTask, taskID)
	}
	ctx, span := tracing.StartSpan(ctx, "registry.Submit", tracing.KindProducer)
	defer func() { tracing.EndSpan(span, err) }()

	id = idgen.New()
	span.WithAttributes(map[string]string{tracing.AttrTaskID: taskID, tracing.AttrSignatureID: id})
	encoded, err := task.NewSignature(arg, id).Encode()
	if err != nil {
		return "", err
	}
	if err = app.broker.PushMessage(ctx, &message.Message{TaskID: taskID, Signature: encoded}); err != nil {
		return "", err
	}
	app.metrics.Submitted(taskID)
	app.logger.Debug("submitted task", zap.String("task", taskID), zap.String("signature", id))
	return id, nil
}

// DecodeResult decodes the stored return value
func DecodeResult[R any](result *message.Result) (R, error) {
	if result == nil {
		var zero R
		return zero, fmt.Errorf("%w: nil result", task.ErrSerialization)
	}
	return task.Decode[R](result.Result)
}
