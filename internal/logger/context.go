package logger

import (
	"context"
)

type contextKey struct{}

var loggerKey = contextKey{}

// WithContext returns a context carrying this logger. Downstream code
// retrieves it with FromContext or the Ctx log functions.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger carried by ctx, or the package default
// when ctx carries none.
// Parameters:
//   - ctx: context to inspect; nil is tolerated.
// Returns:
//   - *Logger: context logger or default.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	return getDefaultLogger()
}

// WithField returns a context whose logger carries one extra field.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// WithFields returns a context whose logger carries the extra fields.
func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

// Tracing field setters. Each pipeline boundary stamps its identifier
// into the context so every log line below it is attributable.

// SetContentID stamps the content id on the context logger.
func SetContentID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldContentID, id)
}

// SetAccount stamps the account slug on the context logger.
func SetAccount(ctx context.Context, slug string) context.Context {
	return WithField(ctx, FieldAccount, slug)
}

// SetLayer stamps the pipeline layer on the context logger.
func SetLayer(ctx context.Context, layer string) context.Context {
	return WithField(ctx, FieldLayer, layer)
}

// SetPlatform stamps the publishing platform on the context logger.
func SetPlatform(ctx context.Context, platform string) context.Context {
	return WithField(ctx, FieldPlatform, platform)
}

// GetRequestID returns the request id stamped by the HTTP middleware,
// or "" when the context has none.
func GetRequestID(ctx context.Context) string {
	return fieldString(ctx, FieldRequestID)
}

func fieldString(ctx context.Context, key string) string {
	val, ok := FromContext(ctx).Data[key]
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}
