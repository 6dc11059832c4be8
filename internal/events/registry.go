package events

// Registry keeps event subscribers and dispatches events to them.
//
// A subscriber can implement any combination of the subscriber interfaces
// in this package and only receives the events it implements:
//
//	registry := events.NewRegistry()
//	registry.Subscribe(failureLimit).Subscribe(collector)
//
//	w := worker.New(receivers, router, registry, logger, worker.Options{})
//
// Subscribers are called synchronously, in registration order, on the
// goroutine that publishes the event.
//
// Registry is NOT thread-safe. Subscribe everything before the worker starts.
type Registry struct {
	subscribers []any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make([]any, 0),
	}
}

// Subscribe adds a subscriber and returns the registry for chaining.
func (r *Registry) Subscribe(subscriber any) *Registry {
	r.subscribers = append(r.subscribers, subscriber)
	return r
}

// Dispatch sends the event to every subscriber that implements the matching interface.
func (r *Registry) Dispatch(event Event) {
	switch e := event.(type) {
	case *WorkerStartedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(WorkerStartedSubscriber); ok {
				sub.OnWorkerStarted(e)
			}
		}
	case *MessageReceivedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(MessageReceivedSubscriber); ok {
				sub.OnMessageReceived(e)
			}
		}
	case *MessageHandledEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(MessageHandledSubscriber); ok {
				sub.OnMessageHandled(e)
			}
		}
	case *MessageFailedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(MessageFailedSubscriber); ok {
				sub.OnMessageFailed(e)
			}
		}
	case *WorkerRunningEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(WorkerRunningSubscriber); ok {
				sub.OnWorkerRunning(e)
			}
		}
	case *WorkerStoppedEvent:
		for _, s := range r.subscribers {
			if sub, ok := s.(WorkerStoppedSubscriber); ok {
				sub.OnWorkerStopped(e)
			}
		}
	}
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	return len(r.subscribers)
}

// Clear removes all subscribers.
func (r *Registry) Clear() {
	r.subscribers = make([]any, 0)
}
