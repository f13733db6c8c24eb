package clients

import (
	"encoding/json"
	"fmt"
	"strings"

	"surfcast/internal/models"
)

// ReportParseError marks LLM output that could not be turned into a
// report through any of the ordered recovery attempts.
type ReportParseError struct {
	Reason string
	Raw    string
}

func (e *ReportParseError) Error() string {
	return fmt.Sprintf("failed to parse report output: %s", e.Reason)
}

// ParseReport turns raw language-model output into a ReportPayload. The
// model is asked for strict JSON but does not reliably comply, so parsing
// is a fallback chain of ordered attempts:
//  1. decode the raw text directly,
//  2. strip markdown code fences and decode,
//  3. extract the first top-level JSON object from surrounding prose.
//
// The verdict is normalized to one of the three allowed values before the
// payload is returned; near-misses like "go" or "NO GO " are accepted.
func ParseReport(raw string) (models.ReportPayload, error) {
	candidates := []string{
		raw,
		stripCodeFences(raw),
		extractFirstJSONObject(raw),
	}

	var payload struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Verdict string `json:"verdict"`
	}
	decoded := false
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
			decoded = true
			break
		}
	}
	if !decoded {
		return models.ReportPayload{}, &ReportParseError{Reason: "no decodable JSON object", Raw: raw}
	}

	if payload.Title == "" || payload.Summary == "" {
		return models.ReportPayload{}, &ReportParseError{Reason: "missing title or summary", Raw: raw}
	}

	verdict, ok := NormalizeVerdict(payload.Verdict)
	if !ok {
		return models.ReportPayload{}, &ReportParseError{Reason: fmt.Sprintf("unrecognized verdict %q", payload.Verdict), Raw: raw}
	}

	return models.ReportPayload{
		Title:   payload.Title,
		Summary: payload.Summary,
		Verdict: verdict,
	}, nil
}

// NormalizeVerdict maps fuzzy verdict strings onto the three allowed
// values. Matching order matters: "NO-GO" contains "GO".
func NormalizeVerdict(s string) (models.Verdict, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.Trim(v, ".!")

	switch {
	case strings.Contains(v, "CONDITIONAL"):
		return models.VerdictConditional, true
	case strings.Contains(v, "NO-GO"), strings.Contains(v, "NO GO"), strings.Contains(v, "NOGO"), strings.Contains(v, "NO_GO"):
		return models.VerdictNoGo, true
	case v == "GO":
		return models.VerdictGo, true
	default:
		return "", false
	}
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "json" || firstLine == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// extractFirstJSONObject returns the first balanced top-level JSON object
// in s, honoring string literals and escapes, or "" if none exists.
func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
