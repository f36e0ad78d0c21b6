package message

import (
	"encoding/json"
	"fmt"
)

// WorkerState represents worker lifecycle state
type WorkerState string

const (
	// WorkerStatePending worker is registered but not polling yet
	WorkerStatePending WorkerState = "Pending"
	// WorkerStateRunning worker is actively polling
	WorkerStateRunning WorkerState = "Running"
	// WorkerStateStopped worker left its loop; terminal
	WorkerStateStopped WorkerState = "Stopped"
)

// IsValid reports whether s is a known state.
func (s WorkerState) IsValid() bool {
	switch s {
	case WorkerStatePending, WorkerStateRunning, WorkerStateStopped:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown states.
func (s *WorkerState) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if !WorkerState(value).IsValid() {
		return fmt.Errorf("unknown worker state %q", value)
	}
	*s = WorkerState(value)
	return nil
}

// WorkerInfo is the presence entry a worker publishes on every transition.
type WorkerInfo struct {
	ID    string      `json:"id"`
	State WorkerState `json:"state"`
}

// Clone returns a copy of the info.
func (w *WorkerInfo) Clone() *WorkerInfo {
	if w == nil {
		return nil
	}
	ret := *w
	return &ret
}
