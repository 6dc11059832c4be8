package listener

import (
	"errors"

	"msgworker/internal/events"
)

type logRecord struct {
	level    string
	template string
	params   map[string]any
}

type recordingLogger struct {
	records []logRecord
}

func (l *recordingLogger) Error(template string, params map[string]any) {
	l.records = append(l.records, logRecord{level: "error", template: template, params: params})
}

func (l *recordingLogger) Info(template string, params map[string]any) {
	l.records = append(l.records, logRecord{level: "info", template: template, params: params})
}

func (l *recordingLogger) byLevel(level string) []logRecord {
	var out []logRecord
	for _, r := range l.records {
		if r.level == level {
			out = append(out, r)
		}
	}
	return out
}

type fakeWorker struct {
	stops int
}

func (w *fakeWorker) Stop() {
	w.stops++
}

func failedEvent(err error) *events.MessageFailedEvent {
	return &events.MessageFailedEvent{
		Envelope:     &events.Envelope{ID: "1", Type: "dummy", Body: []byte("hello")},
		ReceiverName: "default",
		Err:          err,
	}
}

var errTrace = errors.New("trace")
