package util

import "strings"

// StorableText drops NUL bytes and invalid UTF-8 sequences so the text fits a
// Postgres TEXT column. Other control characters are kept.
func StorableText(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.ToValidUTF8(s, "")
}
