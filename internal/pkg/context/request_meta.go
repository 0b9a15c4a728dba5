// Package context carries per-request metadata that logging needs below the
// transport layer.
package context

import "context"

type metaKey int

const (
	requestIDKey metaKey = iota
	clientIPKey
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns "" for a nil ctx or when no id was set.
func GetRequestID(ctx context.Context) string {
	return str(ctx, requestIDKey)
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func GetClientIP(ctx context.Context) string {
	return str(ctx, clientIPKey)
}

func str(ctx context.Context, k metaKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(k).(string)
	return v
}
