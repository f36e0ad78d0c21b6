package message

import (
	"encoding/json"
	"fmt"
)

// Command is an instruction addressed to a single worker.
type Command string

const (
	// StopWorker asks a worker to leave its listen loop before pulling the
	// next task.
	StopWorker Command = "StopWorker"
)

// IsValid reports whether c is a known command.
func (c Command) IsValid() bool {
	switch c {
	case StopWorker:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown command tags.
func (c *Command) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	if !Command(tag).IsValid() {
		return fmt.Errorf("unknown command %q", tag)
	}
	*c = Command(tag)
	return nil
}
