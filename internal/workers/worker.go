package workers

import "context"

// Worker defines the interface for all background workers
type Worker interface {
	// Start starts the worker in the background
	Start(ctx context.Context) error

	// Stop asks the worker to stop. It must not block.
	Stop()

	// Done is closed once the worker has fully stopped
	Done() <-chan struct{}

	// Name returns the worker name for logging
	Name() string
}
