package events

import "time"

// Envelope wraps one message together with its delivery metadata.
// Subscribers receive it as-is and should treat the body as opaque.
type Envelope struct {
	ID          string
	Queue       string
	Type        string
	Body        []byte
	Headers     map[string]string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// Stopper is anything that accepts a cooperative stop request.
// Stop must be safe to call more than once.
type Stopper interface {
	Stop()
}
