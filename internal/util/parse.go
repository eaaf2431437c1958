package util

import (
	"regexp"
	"strconv"
	"strings"
)

var priceNumberRegex = regexp.MustCompile(`\d+(?:\s\d+)*`)

// ParsePrice extracts the leading space-grouped number from price text,
// e.g. "1 200 zł" -> 1200. Returns 0 when no number is present.
func ParsePrice(s string) int {
	m := priceNumberRegex.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, " ", ""))
	if err != nil {
		return 0
	}
	return n
}

// TruncateRunes shortens s to at most n runes without splitting a rune.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
