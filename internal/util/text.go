package util

import "strings"

// SanitizePostgresText strips byte sequences Postgres rejects in TEXT
// columns and normalizes line endings. Paragraph texts are newline-joined
// sentences, so CRLF from Windows-exported corpora would otherwise leak
// into the stored rows.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\r\n", "\n")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
