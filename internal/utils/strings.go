package utils

import "strings"

// ParseSymbolList splits a comma-separated list of ticker symbols.
// Values are trimmed and upper-cased; blanks and repeats are dropped, first
// occurrence wins. Returns nil when nothing remains.
func ParseSymbolList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, v := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(v))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		result = append(result, sym)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// ParseList splits a comma-separated string and returns trimmed non-empty values
// with their case preserved.
func ParseList(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
