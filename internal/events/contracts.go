package events

type (
	WorkerStartedSubscriber interface {
		OnWorkerStarted(e *WorkerStartedEvent)
	}

	MessageReceivedSubscriber interface {
		OnMessageReceived(e *MessageReceivedEvent)
	}

	MessageHandledSubscriber interface {
		OnMessageHandled(e *MessageHandledEvent)
	}

	// MessageFailedSubscriber is implemented by anything that reacts to failed messages.
	MessageFailedSubscriber interface {
		OnMessageFailed(e *MessageFailedEvent)
	}

	// WorkerRunningSubscriber is called once per worker loop iteration.
	WorkerRunningSubscriber interface {
		OnWorkerRunning(e *WorkerRunningEvent)
	}

	WorkerStoppedSubscriber interface {
		OnWorkerStopped(e *WorkerStoppedEvent)
	}
)
