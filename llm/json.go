package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned by ExtractJSON when the response holds no valid JSON value.
var ErrNoJSON = errors.New("no valid JSON found in response")

// thinkTagPattern matches <think>...</think> blocks some reasoning models prepend.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSON returns the first balanced JSON object or array in response
// that parses. It strips leading <think> blocks and ignores surrounding
// prose or code fences. Brackets inside string literals are not counted.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	trimmed := strings.TrimSpace(cleaned)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	first, second := byte('{'), byte('[')
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		first, second = '[', '{'
	}

	for _, open := range []byte{first, second} {
		if candidate, ok := extractBalancedJSON(cleaned, open); ok {
			return candidate, nil
		}
	}

	return "", ErrNoJSON
}

// extractBalancedJSON scans every occurrence of open and returns the first
// balanced region that is valid JSON.
func extractBalancedJSON(s string, open byte) (string, bool) {
	closeChar := byte('}')
	if open == '[' {
		closeChar = ']'
	}

	for offset := 0; offset < len(s); {
		idx := strings.IndexByte(s[offset:], open)
		if idx < 0 {
			return "", false
		}
		start := offset + idx
		if end, ok := matchClose(s, start, open, closeChar); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		offset = start + 1
	}
	return "", false
}

// matchClose returns the index of the bracket closing the one at start.
func matchClose(s string, start int, open, closeChar byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
