package logger

import (
	"regexp"
	"strings"
)

// sensitivePatterns match credentials that can end up in DSNs or error text.
var sensitivePatterns = []*regexp.Regexp{
	// user:password@tcp(host) as used by go-sql-driver/mysql DSNs
	regexp.MustCompile(`([A-Za-z0-9_.\-]+:)([^@\s]+)(@)`),
	// password=..., token: ..., secret ...
	regexp.MustCompile(`(?i)((passw(or)?d|secret|token)[\s:=]+)([^;,\s]{1,})`),
}

// sensitiveKeywords mark field keys whose values are never logged.
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "dsn", "credential"}

// RedactSensitiveData replaces credentials in s with "[REDACTED]".
func RedactSensitiveData(s string) string {
	if s == "" {
		return s
	}
	s = sensitivePatterns[0].ReplaceAllString(s, "${1}[REDACTED]${3}")
	return sensitivePatterns[1].ReplaceAllString(s, "${1}[REDACTED]")
}

// IsSensitiveKey reports whether a field key names a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Redacted creates a string field, masking the value when the key is sensitive
// and scrubbing embedded credentials otherwise.
func Redacted(key, value string) Field {
	if IsSensitiveKey(key) && value != "" {
		return String(key, "[REDACTED]")
	}
	return String(key, RedactSensitiveData(value))
}
