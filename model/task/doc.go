// Package task defines the statically typed side of the queue: a Task
// declares its argument and return types, a Signature binds one argument to
// one invocation id, and an Invocation pairs a task with the signature it was
// built from.
//
// Argument and return values travel as JSON, so both must survive a
// marshal/unmarshal round trip unchanged.
package task
