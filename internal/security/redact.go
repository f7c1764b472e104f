// Package security masks credentials before they reach logs or the terminal.
package security

import (
	"regexp"
	"strings"
)

// sensitivePatterns match credentials embedded in free text.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(api[_-]?key|api[_-]?token|access[_-]?token|auth[_-]?token|password)(\s*[=:]\s*)["']?([^\s"'&]+)["']?`),
	regexp.MustCompile(`(?i)\b(bearer)(\s+)([A-Za-z0-9._~+/-]+=*)`),
}

// dsnPassword matches the user:password@ part of a URL-style DSN.
var dsnPassword = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://[^:/@\s]+):[^@\s]*@`)

// Masked replaces a fully hidden value.
const Masked = "********"

// MaskSecret keeps the edges of long values and hides everything else.
func MaskSecret(value string) string {
	switch n := len(value); {
	case n == 0:
		return ""
	case n <= 8:
		return strings.Repeat("*", n)
	default:
		return value[:2] + strings.Repeat("*", n-4) + value[n-2:]
	}
}

// MaskSensitive hides credentials found in free text such as error messages.
func MaskSensitive(input string) string {
	input = dsnPassword.ReplaceAllString(input, "${1}:"+Masked+"@")
	for _, pattern := range sensitivePatterns {
		input = pattern.ReplaceAllString(input, "${1}${2}"+Masked)
	}
	return input
}

// RedactDSN hides the password of a postgres URL or key=value DSN.
func RedactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		return dsnPassword.ReplaceAllString(dsn, "${1}:"+Masked+"@")
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=" + Masked
		}
	}
	return strings.Join(fields, " ")
}
