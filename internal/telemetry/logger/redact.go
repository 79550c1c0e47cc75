package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// contentKeys name attributes carrying document text.
var contentKeys = map[string]struct{}{
	"content": {},
	"text":    {},
	"body":    {},
}

// Key fragments that mark credentials, e.g. in config dumps.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
}

const redactedValue = "***REDACTED***"

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if IsContentKey(a.Key) {
		return slog.String(a.Key, Summarize(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString && IsSensitiveKey(a.Key) && a.Value.String() != "" {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// IsContentKey reports whether an attribute key names document text.
func IsContentKey(key string) bool {
	_, ok := contentKeys[strings.ToLower(key)]
	return ok
}

// IsSensitiveKey reports whether a key name suggests a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// Summarize replaces text with its length.
func Summarize(text string) string {
	return fmt.Sprintf("<%d runes>", utf8.RuneCountInString(text))
}
