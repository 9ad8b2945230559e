package parse

import "strings"

// ExtractJSONSpan returns the substring between the first '{' and the last
// '}' of text, inclusive. This is deliberately NOT a balanced-brace scan:
// model output routinely wraps the JSON block in commentary, and the
// first/last heuristic is the best effort the format allows. Its known
// weakness is text containing multiple unrelated brace groups, where the
// combined span usually fails to decode and the caller falls back to plain
// text.
func ExtractJSONSpan(text string) (string, bool) {
	first := strings.Index(text, "{")
	if first < 0 {
		return "", false
	}
	last := strings.LastIndex(text, "}")
	if last < first {
		return "", false
	}
	return text[first : last+1], true
}

// StripFences removes markdown code fence lines so that JSON wrapped in
// ```json blocks decodes cleanly.
func StripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
