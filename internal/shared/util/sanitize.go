package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameBytes = 200

// SanitizeFileName removes path separators and control characters, rejects
// traversal patterns and caps the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameBytes {
		s = truncateKeepingExt(s, maxFileNameBytes)
	}
	return s, nil
}

func truncateKeepingExt(s string, limit int) string {
	ext := ""
	if i := strings.LastIndex(s, "."); i > 0 && len(s)-i <= 16 {
		ext = s[i:]
	}
	base := s[:len(s)-len(ext)]
	keep := limit - len(ext)
	// back off to a rune boundary
	for keep > 0 && keep < len(base) && !utf8Start(base[keep]) {
		keep--
	}
	return base[:keep] + ext
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
