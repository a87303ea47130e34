// Package redact strips sensitive material from strings before they reach
// logs or error responses. The service handles provisioned provider
// credentials, session cookies and database URLs; none of those may appear
// verbatim in an error message.
package redact

import "regexp"

// Redaction placeholders
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	HostPlaceholder       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Ordered redaction rules. Specific credential shapes run before the broad
// host pattern so their placeholders win.
var rules = []rule{
	// Database connection strings with inline credentials
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), CredentialPlaceholder + "@"},

	// Password fields however they are spelled
	{regexp.MustCompile(`(?i)(password|passwd|pwd)(['"\s:=]+)[^'"&\s]{3,}`), "$1$2" + CredentialPlaceholder},

	// Session and CSRF cookies from the generation provider
	{regexp.MustCompile(`(?i)(__(?:Secure|Host)-authjs\.[\w-]+=)[^;\s]+`), "$1" + TokenPlaceholder},

	// JWT-shaped tokens
	{regexp.MustCompile(`eyJ[\w-]+\.eyJ[\w-]+\.[\w-]+`), TokenPlaceholder},

	// Bearer headers and token/secret assignments
	{regexp.MustCompile(`(?i)(bearer\s+|token['"\s:=]+|secret['"\s:=]+)[\w\-.~+/]{8,}`), "$1" + TokenPlaceholder},

	// Mailbox addresses
	{regexp.MustCompile(`\b[\w.%+-]+@[\w.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},

	// Filesystem paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},

	// host:port endpoints
	{regexp.MustCompile(`\b(?:[\w-]+\.)+[A-Za-z]{2,}:\d{1,5}\b`), HostPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
