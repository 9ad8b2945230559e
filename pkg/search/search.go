// Package search is the web search collaborator. Grounding actions feed its
// formatted output back to the model for one more generation pass.
package search

import (
	"context"
	"fmt"
	"strings"
)

type Result struct {
	Title   string
	URL     string
	Snippet string
}

type Searcher interface {
	Query(ctx context.Context, text string, maxResults int) ([]Result, error)
}

// FormatResults renders results as source-annotated text suitable for
// embedding in a grounding prompt.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.TrimRight(sb.String(), "\n")
}
