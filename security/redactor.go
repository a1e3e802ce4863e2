package security

import (
	"regexp"
)

// Redactor masks credential-looking material in candidate strings before
// they are written to the audit log. Authorization requests routinely
// carry full command lines, and a denied `curl -H "Authorization: ..."`
// must not leak its token into the audit trail.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor covering common secret shapes.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Labeled keys and tokens (key=..., token: "...")
			regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?token|auth[_-]?token|secret|password|passwd|pwd)([:=]\s*["']?)[a-zA-Z0-9_\-\.]{8,}(["']?)`),

			// Bearer tokens in headers
			regexp.MustCompile(`(?i)(Bearer\s+)[a-zA-Z0-9_\-\.]{10,}`),

			// Cloud provider key IDs
			regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
			regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),

			// GitHub tokens
			regexp.MustCompile(`gh[pous]_[a-zA-Z0-9]{36}`),

			// JWTs
			regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]{10,}`),

			// Connection URLs with embedded credentials
			regexp.MustCompile(`((?:postgres|mysql|mongodb|redis|amqp)://[^:@/\s]*:)[^@\s]+@`),
		},
	}
}

// Redact masks every detected secret in the input.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return ""
	}

	result := text
	for _, pattern := range r.patterns {
		switch pattern.NumSubexp() {
		case 0:
			result = pattern.ReplaceAllString(result, "[REDACTED]")
		case 1:
			result = pattern.ReplaceAllString(result, "${1}[REDACTED]")
		default:
			result = pattern.ReplaceAllString(result, "${1}${2}[REDACTED]${3}")
		}
	}
	return result
}

// ContainsSecret reports whether the input matches any secret pattern.
func (r *Redactor) ContainsSecret(text string) bool {
	if text == "" {
		return false
	}
	for _, pattern := range r.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
