package events

import "time"

// Event is the marker interface for everything the worker publishes.
type Event interface {
	eventName() string
}

type (
	// WorkerStartedEvent is published once before the first loop iteration.
	WorkerStartedEvent struct {
		Worker    Stopper
		Receivers []string
	}

	// MessageReceivedEvent is published right before a message is handled.
	MessageReceivedEvent struct {
		Envelope     *Envelope
		ReceiverName string
	}

	// MessageHandledEvent is published after a message was handled and acknowledged.
	MessageHandledEvent struct {
		Envelope     *Envelope
		ReceiverName string
		Duration     time.Duration
	}

	// MessageFailedEvent is published when handling a message returned an error.
	MessageFailedEvent struct {
		Envelope     *Envelope
		ReceiverName string
		Err          error
	}

	// WorkerRunningEvent is published once per loop iteration, whatever its outcome.
	// Idle is true when no receiver returned a message during the iteration.
	WorkerRunningEvent struct {
		Worker Stopper
		Idle   bool
	}

	// WorkerStoppedEvent is published once after the loop has exited.
	WorkerStoppedEvent struct {
		Worker Stopper
		Reason string
	}
)

func (*WorkerStartedEvent) eventName() string   { return "worker.started" }
func (*MessageReceivedEvent) eventName() string { return "message.received" }
func (*MessageHandledEvent) eventName() string  { return "message.handled" }
func (*MessageFailedEvent) eventName() string   { return "message.failed" }
func (*WorkerRunningEvent) eventName() string   { return "worker.running" }
func (*WorkerStoppedEvent) eventName() string   { return "worker.stopped" }

// Name returns the dotted name of the event, used in logs and metrics.
func Name(e Event) string {
	return e.eventName()
}

// FailureString returns the text form of the failure carried by the event.
// A missing error yields an empty string.
func (e *MessageFailedEvent) FailureString() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
