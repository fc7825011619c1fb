package tutor

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFencePattern  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// ExtractJSON isolates a JSON document from untrusted model output.
// Strategies are tried in order until one yields valid JSON:
//  1. the whole response
//  2. a fenced ```json block
//  3. any fenced block
//  4. the first balanced {...} or [...] span
//
// Returns false when every strategy fails.
func ExtractJSON(response string) (string, bool) {
	trimmed := strings.TrimSpace(response)
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}

	if m := jsonFencePattern.FindStringSubmatch(response); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	if m := anyFencePattern.FindStringSubmatch(response); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	if candidate, ok := balancedSpan(response, '{', '}'); ok {
		return candidate, true
	}
	if candidate, ok := balancedSpan(response, '[', ']'); ok {
		return candidate, true
	}

	return "", false
}

// balancedSpan scans for the first balanced open..close span that is
// valid JSON. String literals are skipped so braces inside them don't
// break the count.
func balancedSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
