package listener

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger adapts a slog logger to the Logger contract.
// The record message is the template with placeholders filled in, and every
// param is attached as an attribute as well. A nil slog logger yields a nil
// Logger, which disables logging in the listeners.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return nil
	}
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Error(template string, params map[string]any) {
	l.logger.Error(interpolate(template, params), attrs(params)...)
}

func (l *slogLogger) Info(template string, params map[string]any) {
	l.logger.Info(interpolate(template, params), attrs(params)...)
}

func interpolate(template string, params map[string]any) string {
	if len(params) == 0 {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for _, key := range sortedKeys(params) {
		pairs = append(pairs, "{"+key+"}", fmt.Sprint(params[key]))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func attrs(params map[string]any) []any {
	return lo.Map(sortedKeys(params), func(key string, _ int) any {
		return slog.Any(key, params[key])
	})
}

func sortedKeys(params map[string]any) []string {
	keys := lo.Keys(params)
	slices.Sort(keys)
	return keys
}
