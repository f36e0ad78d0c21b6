// Package message defines the payloads exchanged through a broker. All types
// are JSON encoded verbatim into whatever store the broker uses.
package message

// Message is the queued form of one task invocation. Signature holds the JSON
// text of the invocation signature; it is opaque to brokers.
type Message struct {
	TaskID    string `json:"task_id"`
	Signature string `json:"signature"`
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	ret := *m
	return &ret
}

// Result is the stored outcome of a completed invocation, keyed by the
// signature id. Result holds the JSON text of the task return value.
type Result struct {
	SignatureID string `json:"signature_id"`
	Result      string `json:"result"`
}

// Clone returns a copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	ret := *r
	return &ret
}
