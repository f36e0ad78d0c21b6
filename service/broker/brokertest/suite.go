// Package brokertest provides a conformance suite every broker.Broker
// implementation is expected to pass.
package brokertest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/dao"
)

// Factory creates an empty broker for a single sub test
type Factory func(t *testing.T) broker.Broker

// Run runs the broker contract suite
func Run(t *testing.T, newBroker Factory) {
	t.Run("empty pop does not block", func(t *testing.T) {
		testEmptyPop(t, newBroker(t))
	})
	t.Run("messages are fifo", func(t *testing.T) {
		testMessageOrder(t, newBroker(t))
	})
	t.Run("nil message is rejected", func(t *testing.T) {
		testNilMessage(t, newBroker(t))
	})
	t.Run("commands are per worker", func(t *testing.T) {
		testCommands(t, newBroker(t))
	})
	t.Run("results are last write wins", func(t *testing.T) {
		testResults(t, newBroker(t))
	})
	t.Run("worker presence", func(t *testing.T) {
		testWorkers(t, newBroker(t))
	})
}

func testEmptyPop(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	started := time.Now()
	msg, err := b.PopMessage(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
	cmd, err := b.PopCommand(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func testMessageOrder(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	var pushed []*message.Message
	for i := 0; i < 5; i++ {
		msg := &message.Message{TaskID: "task", Signature: fmt.Sprintf(`{"arg":%d,"id":"%d"}`, i, i)}
		require.NoError(t, b.PushMessage(ctx, msg))
		pushed = append(pushed, msg)
	}
	for i := 0; i < len(pushed); i++ {
		msg, err := b.PopMessage(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, pushed[i], msg)
	}
	msg, err := b.PopMessage(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func testNilMessage(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	assert.ErrorIs(t, b.PushMessage(ctx, nil), dao.ErrNilEntity)
	msg, err := b.PopMessage(ctx)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func testCommands(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	require.NoError(t, b.PushCommand(ctx, message.StopWorker, "w1"))

	cmd, err := b.PopCommand(ctx, "w2")
	assert.NoError(t, err)
	assert.Nil(t, cmd, "command must not leak to another worker")

	cmd, err = b.PopCommand(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.Equal(t, message.StopWorker, *cmd)

	cmd, err = b.PopCommand(ctx, "w1")
	assert.NoError(t, err)
	assert.Nil(t, cmd)
}

func testResults(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	result, err := b.LoadResult(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, b.StoreResult(ctx, &message.Result{SignatureID: "s1", Result: "1"}))
	require.NoError(t, b.StoreResult(ctx, &message.Result{SignatureID: "s1", Result: "2"}))
	result, err = b.LoadResult(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, &message.Result{SignatureID: "s1", Result: "2"}, result)
}

func testWorkers(t *testing.T, b broker.Broker) {
	ctx := context.Background()
	info, err := b.LoadWorkerInfo(ctx, "w1")
	assert.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, b.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: "w1", State: message.WorkerStatePending}))
	require.NoError(t, b.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: "w2", State: message.WorkerStatePending}))
	require.NoError(t, b.UpdateWorkerInfo(ctx, &message.WorkerInfo{ID: "w1", State: message.WorkerStateRunning}))

	info, err = b.LoadWorkerInfo(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, &message.WorkerInfo{ID: "w1", State: message.WorkerStateRunning}, info)

	workers, err := b.ListWorkers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*message.WorkerInfo{
		{ID: "w1", State: message.WorkerStateRunning},
		{ID: "w2", State: message.WorkerStatePending},
	}, workers)

	require.NoError(t, b.RemoveWorkerInfo(ctx, "w1"))
	info, err = b.LoadWorkerInfo(ctx, "w1")
	assert.NoError(t, err)
	assert.Nil(t, info)
	require.NoError(t, b.RemoveWorkerInfo(ctx, "w1"), "removing an absent entry is not an error")

	workers, err = b.ListWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, workers, 1)
}
