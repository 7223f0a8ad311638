package dnsprobe

import (
	"strings"
)

// Parse tolerantly tokenizes a Cloudflare trace body, accepting both
// newline-separated and whitespace-separated key=value pairs, possibly
// quoted. Only "loc" and "colo" are extracted; all other keys are
// ignored. If a key appears more than once, the last occurrence wins.
// Parse is applied idempotently: Parse(formatted output of a Result)
// restricted to {loc, colo} reproduces the same Result.
func Parse(body string) Result {
	var result Result

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})

	for _, field := range fields {
		key, value, ok := splitKeyValue(field)
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "loc":
			result.Loc = strings.ToUpper(value)
		case "colo":
			result.Colo = strings.ToUpper(value)
		}
	}

	return result
}

func splitKeyValue(field string) (key, value string, ok bool) {
	idx := strings.IndexByte(field, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(field[:idx])
	value = unquote(strings.TrimSpace(field[idx+1:]))
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
