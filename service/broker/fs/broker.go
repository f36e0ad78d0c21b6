// Package fs provides a broker backed by any viant/afs storage (local files,
// mem://, cloud buckets). Entries are JSON files; queue order follows the
// file names, which are time-sortable ids.
//
// Pops are serialised inside one process only. Several processes polling the
// same location may race on a file; the loser sees the delete fail.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/tasq/internal/idgen"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/dao"
)

const ext = ".json"

// Broker implements broker.Broker on top of afs
type Broker struct {
	fs          afs.Service
	baseURL     string
	messagesURL string
	commandsURL string
	resultsURL  string
	workersURL  string
	mu          sync.Mutex
}

// ensure Broker implements broker.Broker interface
var _ broker.Broker = (*Broker)(nil)

// New creates a broker rooted at baseURL, creating its folders when missing
func New(ctx context.Context, fs afs.Service, baseURL string) (*Broker, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", broker.ErrConnection)
	}
	if fs == nil {
		fs = afs.New()
	}
	baseURL = url.Normalize(baseURL, file.Scheme)
	b := &Broker{
		fs:          fs,
		baseURL:     baseURL,
		messagesURL: url.Join(baseURL, "messages"),
		commandsURL: url.Join(baseURL, "commands"),
		resultsURL:  url.Join(baseURL, "results"),
		workersURL:  url.Join(baseURL, "workers"),
	}
	for _, dir := range []string{b.messagesURL, b.commandsURL, b.resultsURL, b.workersURL} {
		exists, _ := fs.Exists(ctx, dir)
		if exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory %s: %v", broker.ErrConnection, dir, err)
		}
	}
	return b, nil
}

// BaseURL returns the broker root location
func (b *Broker) BaseURL() string {
	return b.baseURL
}

// PushMessage writes a message file
func (b *Broker) PushMessage(ctx context.Context, msg *message.Message) error {
	if msg == nil {
		return dao.ErrNilEntity
	}
	return b.upload(ctx, url.Join(b.messagesURL, idgen.New()+ext), msg)
}

// PopMessage downloads and deletes the oldest message file
func (b *Broker) PopMessage(ctx context.Context) (*message.Message, error) {
	data, err := b.popOldest(ctx, b.messagesURL)
	if err != nil || data == nil {
		return nil, err
	}
	ret := &message.Message{}
	if err := decode(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// PushCommand writes a command file under the worker folder
func (b *Broker) PushCommand(ctx context.Context, command message.Command, workerID string) error {
	if err := validateKey(workerID); err != nil {
		return err
	}
	return b.upload(ctx, url.Join(b.commandsURL, workerID, idgen.New()+ext), command)
}

// PopCommand downloads and deletes the oldest worker command file
func (b *Broker) PopCommand(ctx context.Context, workerID string) (*message.Command, error) {
	if err := validateKey(workerID); err != nil {
		return nil, err
	}
	data, err := b.popOldest(ctx, url.Join(b.commandsURL, workerID))
	if err != nil || data == nil {
		return nil, err
	}
	var ret message.Command
	if err := decode(data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// StoreResult writes the result file
func (b *Broker) StoreResult(ctx context.Context, result *message.Result) error {
	if result == nil {
		return dao.ErrNilEntity
	}
	if err := validateKey(result.SignatureID); err != nil {
		return err
	}
	return b.upload(ctx, url.Join(b.resultsURL, result.SignatureID+ext), result)
}

// LoadResult reads the result file
func (b *Broker) LoadResult(ctx context.Context, signatureID string) (*message.Result, error) {
	if err := validateKey(signatureID); err != nil {
		return nil, err
	}
	ret := &message.Result{}
	ok, err := b.download(ctx, url.Join(b.resultsURL, signatureID+ext), ret)
	if !ok || err != nil {
		return nil, err
	}
	return ret, nil
}

// UpdateWorkerInfo writes the worker file
func (b *Broker) UpdateWorkerInfo(ctx context.Context, info *message.WorkerInfo) error {
	if info == nil {
		return dao.ErrNilEntity
	}
	if err := validateKey(info.ID); err != nil {
		return err
	}
	return b.upload(ctx, url.Join(b.workersURL, info.ID+ext), info)
}

// RemoveWorkerInfo deletes the worker file
func (b *Broker) RemoveWorkerInfo(ctx context.Context, workerID string) error {
	if err := validateKey(workerID); err != nil {
		return err
	}
	URL := url.Join(b.workersURL, workerID+ext)
	exists, err := b.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check worker %s: %w", workerID, err)
	}
	if !exists {
		return nil
	}
	if err := b.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete worker %s: %w", workerID, err)
	}
	return nil
}

// LoadWorkerInfo reads the worker file
func (b *Broker) LoadWorkerInfo(ctx context.Context, workerID string) (*message.WorkerInfo, error) {
	if err := validateKey(workerID); err != nil {
		return nil, err
	}
	ret := &message.WorkerInfo{}
	ok, err := b.download(ctx, url.Join(b.workersURL, workerID+ext), ret)
	if !ok || err != nil {
		return nil, err
	}
	return ret, nil
}

// ListWorkers reads all worker files
func (b *Broker) ListWorkers(ctx context.Context) ([]*message.WorkerInfo, error) {
	objects, err := b.list(ctx, b.workersURL)
	if err != nil {
		return nil, err
	}
	var ret []*message.WorkerInfo
	for _, object := range objects {
		data, err := b.fs.Download(ctx, object)
		if err != nil {
			// removed between list and download
			continue
		}
		info := &message.WorkerInfo{}
		if err := decode(data, info); err != nil {
			return nil, err
		}
		ret = append(ret, info)
	}
	return ret, nil
}

// popOldest removes the first json file (by name) in dirURL and returns its
// content; nil when the folder is empty or missing.
func (b *Broker) popOldest(ctx context.Context, dirURL string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	objects, err := b.list(ctx, dirURL)
	if err != nil || len(objects) == 0 {
		return nil, err
	}
	obj := objects[0]
	data, err := b.fs.Download(ctx, obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", obj.URL(), err)
	}
	if err := b.fs.Delete(ctx, obj.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", obj.URL(), err)
	}
	return data, nil
}

// list returns json files in dirURL sorted by name
func (b *Broker) list(ctx context.Context, dirURL string) ([]storage.Object, error) {
	exists, err := b.fs.Exists(ctx, dirURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", dirURL, err)
	}
	if !exists {
		return nil, nil
	}
	objects, err := b.fs.List(ctx, dirURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dirURL, err)
	}
	var files []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ext) {
			files = append(files, obj)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
	return files, nil
}

func (b *Broker) upload(ctx context.Context, URL string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	if err := b.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", URL, err)
	}
	return nil
}

func (b *Broker) download(ctx context.Context, URL string, v interface{}) (bool, error) {
	exists, err := b.fs.Exists(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", URL, err)
	}
	if !exists {
		return false, nil
	}
	data, err := b.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	if err := decode(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %T: %v", broker.ErrInvalidPayload, v, err)
	}
	return nil
}

// validateKey rejects keys that would escape their folder
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", dao.ErrInvalidID, key)
	}
	return nil
}
