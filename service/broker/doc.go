// Package broker defines the contract between the task registry and the
// storage backend that carries task messages, worker commands, results and
// worker presence.
//
// Every read is non-blocking: an empty queue or a missing entry is reported as
// a nil value with a nil error, never by parking the caller or by an error.
// Backends live in sub-packages (memory, fs, postgres, redis).
package broker
