// Package logging holds helpers for keeping secrets out of log output.
package logging

import "regexp"

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// password=xxx in key/value connection strings
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host in URL-style connection strings (postgres://, amqp://)
	credentialsPattern = regexp.MustCompile(`://[^:/\s]+:[^@/\s]+@`)

	// Bearer tokens in captured headers
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)
)

// SanitizeConnectionString removes credentials from a PostgreSQL or AMQP
// connection string so it can be logged at startup.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return credentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}

// SanitizeHeader removes bearer tokens from a header value.
func SanitizeHeader(value string) string {
	return bearerPattern.ReplaceAllString(value, "Bearer "+RedactedText)
}
