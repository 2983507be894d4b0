package classify

import (
	"errors"
	"strings"
	"unicode"

	"github.com/avivsinai/thread-triage/internal/format"
	"github.com/tidwall/gjson"
)

var (
	ErrEmptyResponse = errors.New("empty model response")
	ErrNoJSON        = errors.New("no JSON object in model response")
	ErrNoFields      = errors.New("model response has no classification fields")
)

// ParseResponse extracts the classification fields from model output. It
// accepts a bare JSON object, one wrapped in Markdown code fences, or one
// embedded in prose. Keys match regardless of case, spaces, underscores or
// dashes. ThreadID is left empty.
func ParseResponse(content string) (format.Classification, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return format.Classification{}, ErrEmptyResponse
	}
	obj, ok := extractObject(stripFences(content))
	if !ok {
		return format.Classification{}, ErrNoJSON
	}

	var out format.Classification
	found := false
	gjson.Parse(obj).ForEach(func(key, value gjson.Result) bool {
		var dst *string
		switch canonicalKey(key.String()) {
		case "incidentnumber", "incident", "incidentid":
			dst = &out.IncidentNumber
		case "rootcause":
			dst = &out.RootCause
		case "type":
			dst = &out.Type
		case "severity":
			dst = &out.Severity
		default:
			return true
		}
		found = true
		if value.Type != gjson.Null {
			*dst = strings.TrimSpace(value.String())
		}
		return true
	})
	if !found {
		return format.Classification{}, ErrNoFields
	}
	out.Type = normalizeType(out.Type)
	out.Severity = normalizeSeverity(out.Severity)
	return out, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string, e.g. "json".
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// extractObject returns the first balanced, valid JSON object in s.
func extractObject(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end, ok := matchBrace(s, start); ok {
			candidate := s[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func canonicalKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func normalizeType(v string) string {
	switch strings.ToLower(v) {
	case "restart":
		return "Restart"
	case "error":
		return "Error"
	}
	return v
}

func normalizeSeverity(v string) string {
	switch strings.ToLower(v) {
	case "high":
		return "High"
	case "med", "medium":
		return "Med"
	case "low":
		return "Low"
	}
	return v
}
