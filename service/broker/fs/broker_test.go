package fs

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/broker/brokertest"
	"github.com/viant/tasq/service/dao"
)

func TestBroker_Memory(t *testing.T) {
	brokertest.Run(t, func(t *testing.T) broker.Broker {
		baseURL := fmt.Sprintf("mem://localhost/tasq-%d", time.Now().UnixNano())
		b, err := New(context.Background(), afs.New(), baseURL)
		require.NoError(t, err)
		return b
	})
}

func TestBroker_LocalFiles(t *testing.T) {
	brokertest.Run(t, func(t *testing.T) broker.Broker {
		b, err := New(context.Background(), afs.New(), t.TempDir())
		require.NoError(t, err)
		return b
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, nil, "")
	assert.ErrorIs(t, err, broker.ErrConnection)

	dir := t.TempDir()
	b, err := New(ctx, nil, dir)
	require.NoError(t, err)
	for _, name := range []string{"messages", "commands", "results", "workers"} {
		info, err := os.Stat(dir + "/" + name)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Contains(t, b.BaseURL(), dir)
}

func TestBroker_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	b, err := New(ctx, afs.New(), t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, b.PushCommand(ctx, message.StopWorker, "../escape"), dao.ErrInvalidID)
	_, err = b.LoadResult(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
	assert.ErrorIs(t, b.StoreResult(ctx, nil), dao.ErrNilEntity)
}

func TestBroker_InvalidPayload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := New(ctx, afs.New(), dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dir+"/workers/w1.json", []byte("{"), 0644))
	_, err = b.LoadWorkerInfo(ctx, "w1")
	assert.ErrorIs(t, err, broker.ErrInvalidPayload)
}
