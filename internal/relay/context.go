package relay

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the inbound request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestAttrs(ctx context.Context) []any {
	if id := RequestID(ctx); id != "" {
		return []any{"request_id", id}
	}
	return nil
}
