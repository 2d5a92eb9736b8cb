package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const mask = "***"

// sensitiveKeys are attribute keys whose values are never written
var sensitiveKeys = map[string]bool{
	"password":     true,
	"auth_token":   true,
	"token":        true,
	"x-auth-token": true,
}

// secretPattern matches key=value and "key":"value" pairs embedded in strings
var secretPattern = regexp.MustCompile(`(?i)("?(?:password|auth_token|x-auth-token)"?\s*[:=]\s*"?)([^"\s,&}]+)`)

func maskSecrets(text string) string {
	return secretPattern.ReplaceAllString(text, "${1}"+mask)
}

// MaskingHandler wraps a slog.Handler and redacts credentials
type MaskingHandler struct {
	handler slog.Handler
}

// NewMaskingHandler wraps handler
func NewMaskingHandler(handler slog.Handler) *MaskingHandler {
	return &MaskingHandler{handler: handler}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	// Build a fresh record; slog may reuse the caller's.
	r := slog.NewRecord(record.Time, record.Level, maskSecrets(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, r)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &MaskingHandler{handler: h.handler.WithAttrs(masked)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, mask)
	}
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(v slog.Value) slog.Value {
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(maskSecrets(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(maskSecrets(err.Error()))
		}
		return v
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = maskAttr(a)
		}
		return slog.GroupValue(masked...)
	case slog.KindLogValuer:
		return maskValue(v.Resolve())
	default:
		return v
	}
}
