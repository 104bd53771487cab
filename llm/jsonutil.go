package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// JSON recovery from free-form model output. Models wrap payloads in
// markdown fences, lead with prose, trail with commentary, and emit
// JavaScript-style comments and trailing commas. The recovery here is
// deliberately shape-guessing (slice between the outermost braces) and
// is the single place that policy lives; every stage parses through
// DecodeObject or DecodeArray and handles ErrMalformedResponse uniformly.

var (
	// fencePattern matches a leading or trailing markdown code fence.
	fencePattern = regexp.MustCompile("(?m)^```(?:json)?\\s*$|```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON locates a JSON object in model output: strip code fences,
// slice from the first '{' through the last '}' inclusive, and clean up
// comment/comma artifacts. Returns "" when no brace pair exists.
func ExtractJSON(content string) string {
	return extractDelimited(content, '{', '}')
}

// ExtractJSONArray is ExtractJSON for top-level arrays.
func ExtractJSONArray(content string) string {
	return extractDelimited(content, '[', ']')
}

func extractDelimited(content string, open, shut byte) string {
	stripped := fencePattern.ReplaceAllString(content, "")

	start := strings.IndexByte(stripped, open)
	end := strings.LastIndexByte(stripped, shut)
	if start < 0 || end < start {
		return ""
	}
	return cleanJSON(stripped[start : end+1])
}

// DecodeObject extracts and unmarshals a JSON object into T. Failure is
// reported as ErrMalformedResponse; callers fall back to a stage default
// rather than propagating the parse error.
func DecodeObject[T any](content string) (T, error) {
	var out T
	raw := ExtractJSON(content)
	if raw == "" {
		return out, NewMalformedResponseError("no JSON object in %d bytes of output", len(content))
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, NewMalformedResponseError("decode object: %v", err)
	}
	return out, nil
}

// DecodeArray extracts and unmarshals a JSON array into a []T.
func DecodeArray[T any](content string) ([]T, error) {
	raw := ExtractJSONArray(content)
	if raw == "" {
		return nil, NewMalformedResponseError("no JSON array in %d bytes of output", len(content))
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, NewMalformedResponseError("decode array: %v", err)
	}
	return out, nil
}

// cleanJSON removes JavaScript-style comments and trailing commas, both
// common invalid-JSON artifacts in model output.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")
	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line, leaving // that
// appears inside string values (URLs) intact.
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
