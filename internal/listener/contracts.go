package listener

// Logger receives diagnostic records from the stop listeners.
// Templates use {name} placeholders that refer to keys in params.
type Logger interface {
	Error(template string, params map[string]any)
	Info(template string, params map[string]any)
}
