package logging

import (
	"context"
	"log/slog"
)

// CapturingHandler wraps an slog.Handler, recording every log record of one
// invocation into a LogCollector while passing records on to the underlying
// handler.
type CapturingHandler struct {
	underlying   slog.Handler
	collector    *LogCollector
	invocationID string
	attrs        []slog.Attr
	groups       []string
}

// NewCapturingHandler creates a handler that records logs for invocationID.
func NewCapturingHandler(underlying slog.Handler, collector *LogCollector, invocationID string) *CapturingHandler {
	return &CapturingHandler{
		underlying:   underlying,
		collector:    collector,
		invocationID: invocationID,
	}
}

// NewInvocationLogger returns a logger that records into collector under
// invocationID and also writes to base. The returned logger carries an
// invocation_id attribute.
func NewInvocationLogger(base *slog.Logger, collector *LogCollector, invocationID string) *slog.Logger {
	if collector == nil {
		return base.With("invocation_id", invocationID)
	}
	h := NewCapturingHandler(base.Handler(), collector, invocationID)
	return slog.New(h).With("invocation_id", invocationID)
}

// Enabled always returns true so debug records are captured even when the
// underlying handler would drop them.
func (h *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle captures the record, then forwards it if the underlying handler
// accepts its level.
func (h *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:       r.Time,
		Level:      r.Level.String(),
		Message:    r.Message,
		Attributes: make(map[string]any, r.NumAttrs()+len(h.attrs)),
	}
	for _, attr := range h.attrs {
		entry.Attributes[attr.Key] = resolveValue(attr.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attributes[a.Key] = resolveValue(a.Value)
		return true
	})
	h.collector.AddLog(h.invocationID, entry)

	if !h.underlying.Enabled(ctx, r.Level) {
		return nil
	}
	return h.underlying.Handle(ctx, r)
}

// WithAttrs must return a CapturingHandler so capture survives .With() chains.
func (h *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &CapturingHandler{
		underlying:   h.underlying.WithAttrs(attrs),
		collector:    h.collector,
		invocationID: h.invocationID,
		attrs:        newAttrs,
		groups:       h.groups,
	}
}

// WithGroup must return a CapturingHandler so capture survives .WithGroup() chains.
func (h *CapturingHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	return &CapturingHandler{
		underlying:   h.underlying.WithGroup(name),
		collector:    h.collector,
		invocationID: h.invocationID,
		attrs:        h.attrs,
		groups:       newGroups,
	}
}

// resolveValue converts a slog.Value to a JSON-serializable value.
func resolveValue(v slog.Value) any {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time()
	case slog.KindAny:
		a := v.Any()
		if err, ok := a.(error); ok {
			return err.Error()
		}
		return a
	case slog.KindGroup:
		attrs := v.Group()
		group := make(map[string]any, len(attrs))
		for _, attr := range attrs {
			group[attr.Key] = resolveValue(attr.Value)
		}
		return group
	default:
		return v.Any()
	}
}
