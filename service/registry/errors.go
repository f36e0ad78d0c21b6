package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrUnregisteredTask is returned by Submit for a task kind the app does
	// not know; nothing is written to the broker.
	ErrUnregisteredTask = errors.New("registry: unregistered task")

	// ErrUnknownTask is returned by Dispatch when a message names a task kind
	// the app does not know. It also matches ErrUnregisteredTask.
	ErrUnknownTask = fmt.Errorf("%w: unknown task", ErrUnregisteredTask)

	// ErrFrozen is returned by Register once the builder has been frozen.
	ErrFrozen = errors.New("registry: registry is frozen")
)
