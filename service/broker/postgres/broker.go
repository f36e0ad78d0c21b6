// Package postgres provides a broker stored in PostgreSQL tables. Queue pops
// use FOR UPDATE SKIP LOCKED so any number of workers can poll one database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/viant/tasq/model/message"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/dao"
)

// DefaultPrefix is used when no table prefix is supplied
const DefaultPrefix = "tasq"

// Broker implements broker.Broker on top of database/sql with the lib/pq driver
type Broker struct {
	db       *sql.DB
	messages string
	commands string
	results  string
	workers  string
}

// ensure Broker implements broker.Broker interface
var _ broker.Broker = (*Broker)(nil)

// New opens dsn, pings the server and creates missing tables
func New(ctx context.Context, dsn string, prefix string) (*Broker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", broker.ErrConnection, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", broker.ErrConnection, err)
	}
	ret, err := NewWithDB(ctx, db, prefix)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return ret, nil
}

// NewWithDB creates a broker on an existing connection pool
func NewWithDB(ctx context.Context, db *sql.DB, prefix string) (*Broker, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	b := &Broker{
		db:       db,
		messages: pq.QuoteIdentifier(prefix + "_messages"),
		commands: pq.QuoteIdentifier(prefix + "_commands"),
		results:  pq.QuoteIdentifier(prefix + "_results"),
		workers:  pq.QuoteIdentifier(prefix + "_workers"),
	}
	if err := b.createSchema(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Broker) createSchema(ctx context.Context) error {
	DDLs := []string{
		`CREATE TABLE IF NOT EXISTS ` + b.messages + ` (
            id BIGSERIAL PRIMARY KEY,
            task_id TEXT NOT NULL,
            signature TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ` + b.commands + ` (
            id BIGSERIAL PRIMARY KEY,
            worker_id TEXT NOT NULL,
            command TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ` + b.results + ` (
            signature_id TEXT PRIMARY KEY,
            result TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ` + b.workers + ` (
            id TEXT PRIMARY KEY,
            state TEXT NOT NULL
        )`,
	}
	for _, DDL := range DDLs {
		if _, err := b.db.ExecContext(ctx, DDL); err != nil {
			return fmt.Errorf("%w: failed to create schema: %v", broker.ErrConnection, err)
		}
	}
	return nil
}

// Close closes the underlying connection pool
func (b *Broker) Close() error {
	return b.db.Close()
}

// PushMessage inserts a message row
func (b *Broker) PushMessage(ctx context.Context, msg *message.Message) error {
	if msg == nil {
		return dao.ErrNilEntity
	}
	_, err := b.db.ExecContext(ctx, `INSERT INTO `+b.messages+` (task_id, signature) VALUES ($1, $2)`, msg.TaskID, msg.Signature)
	if err != nil {
		return fmt.Errorf("failed to push message %v: %w", msg.TaskID, err)
	}
	return nil
}

// PopMessage deletes and returns the oldest unlocked message row
func (b *Broker) PopMessage(ctx context.Context) (*message.Message, error) {
	SQL := `DELETE FROM ` + b.messages + ` WHERE id = (
        SELECT id FROM ` + b.messages + ` ORDER BY id FOR UPDATE SKIP LOCKED LIMIT 1
    ) RETURNING task_id, signature`
	ret := &message.Message{}
	err := b.db.QueryRowContext(ctx, SQL).Scan(&ret.TaskID, &ret.Signature)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop message: %w", err)
	}
	return ret, nil
}

// PushCommand inserts a command row for workerID
func (b *Broker) PushCommand(ctx context.Context, command message.Command, workerID string) error {
	_, err := b.db.ExecContext(ctx, `INSERT INTO `+b.commands+` (worker_id, command) VALUES ($1, $2)`, workerID, string(command))
	if err != nil {
		return fmt.Errorf("failed to push command %v for worker %v: %w", command, workerID, err)
	}
	return nil
}

// PopCommand deletes and returns the oldest command row for workerID
func (b *Broker) PopCommand(ctx context.Context, workerID string) (*message.Command, error) {
	SQL := `DELETE FROM ` + b.commands + ` WHERE id = (
        SELECT id FROM ` + b.commands + ` WHERE worker_id = $1 ORDER BY id FOR UPDATE SKIP LOCKED LIMIT 1
    ) RETURNING command`
	var raw string
	err := b.db.QueryRowContext(ctx, SQL, workerID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop command for worker %v: %w", workerID, err)
	}
	command := message.Command(raw)
	if !command.IsValid() {
		return nil, fmt.Errorf("%w: unknown command %q", broker.ErrInvalidPayload, raw)
	}
	return &command, nil
}

// StoreResult upserts a result row
func (b *Broker) StoreResult(ctx context.Context, result *message.Result) error {
	if result == nil {
		return dao.ErrNilEntity
	}
	SQL := `INSERT INTO ` + b.results + ` (signature_id, result) VALUES ($1, $2)
        ON CONFLICT (signature_id) DO UPDATE SET result = EXCLUDED.result`
	if _, err := b.db.ExecContext(ctx, SQL, result.SignatureID, result.Result); err != nil {
		return fmt.Errorf("failed to store result %v: %w", result.SignatureID, err)
	}
	return nil
}

// LoadResult selects a result row
func (b *Broker) LoadResult(ctx context.Context, signatureID string) (*message.Result, error) {
	ret := &message.Result{}
	err := b.db.QueryRowContext(ctx, `SELECT signature_id, result FROM `+b.results+` WHERE signature_id = $1`, signatureID).
		Scan(&ret.SignatureID, &ret.Result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result %v: %w", signatureID, err)
	}
	return ret, nil
}

// UpdateWorkerInfo upserts a worker row
func (b *Broker) UpdateWorkerInfo(ctx context.Context, info *message.WorkerInfo) error {
	if info == nil {
		return dao.ErrNilEntity
	}
	SQL := `INSERT INTO ` + b.workers + ` (id, state) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state`
	if _, err := b.db.ExecContext(ctx, SQL, info.ID, string(info.State)); err != nil {
		return fmt.Errorf("failed to update worker %v: %w", info.ID, err)
	}
	return nil
}

// RemoveWorkerInfo deletes a worker row
func (b *Broker) RemoveWorkerInfo(ctx context.Context, workerID string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM `+b.workers+` WHERE id = $1`, workerID); err != nil {
		return fmt.Errorf("failed to remove worker %v: %w", workerID, err)
	}
	return nil
}

// LoadWorkerInfo selects a worker row
func (b *Broker) LoadWorkerInfo(ctx context.Context, workerID string) (*message.WorkerInfo, error) {
	var id, state string
	err := b.db.QueryRowContext(ctx, `SELECT id, state FROM `+b.workers+` WHERE id = $1`, workerID).Scan(&id, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load worker %v: %w", workerID, err)
	}
	return newWorkerInfo(id, state)
}

// ListWorkers selects all worker rows ordered by id
func (b *Broker) ListWorkers(ctx context.Context) ([]*message.WorkerInfo, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, state FROM `+b.workers+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()
	var ret []*message.WorkerInfo
	for rows.Next() {
		var id, state string
		if err = rows.Scan(&id, &state); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		info, err := newWorkerInfo(id, state)
		if err != nil {
			return nil, err
		}
		ret = append(ret, info)
	}
	return ret, rows.Err()
}

func newWorkerInfo(id, state string) (*message.WorkerInfo, error) {
	ret := &message.WorkerInfo{ID: id, State: message.WorkerState(state)}
	if !ret.State.IsValid() {
		return nil, fmt.Errorf("%w: unknown worker state %q", broker.ErrInvalidPayload, state)
	}
	return ret, nil
}
