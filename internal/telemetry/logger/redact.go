package logger

import (
	"log/slog"
	"strings"

	"github.com/yndnr/hashguard/pkg/securemap"
)

// Attribute names whose string values are client data or secrets.
var sensitiveKeyPatterns = []string{
	"key",
	"value",
	"seed",
	"secret",
	"password",
	"token",
}

// Attribute names that contain a sensitive pattern but only ever carry
// metadata.
var safeKeys = map[string]bool{
	"key_count":  true,
	"key_length": true,
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		switch a.Value.Any().(type) {
		case securemap.Seed, *securemap.Seed:
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks a client-supplied string for diagnostics, keeping
// only its length and the first and last two bytes of longer values.
func RedactString(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:2] + "***" + value[len(value)-2:]
}

// IsSensitiveKey checks if an attribute name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if safeKeys[keyLower] {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
