package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey string

const slogFields ctxKey = "slog_fields"

// ContextHandler adds the attributes stored in the context by AppendCtx to every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{h.Handler.WithGroup(name)}
}

// AppendCtx returns a copy of parent carrying attr in addition to the attributes it already has.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	existing, _ := parent.Value(slogFields).([]slog.Attr)
	attrs := make([]slog.Attr, 0, len(existing)+1)
	attrs = append(attrs, existing...)
	attrs = append(attrs, attr)

	return context.WithValue(parent, slogFields, attrs)
}
