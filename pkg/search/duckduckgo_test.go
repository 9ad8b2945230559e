package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHTML = `
<html><body>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Fweather">Berlin Weather</a>
  <a class="result__snippet">Sunny with a high of 21C.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/forecast">Forecast</a>
  <a class="result__snippet">Seven day forecast.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.net/third">Third</a>
  <a class="result__snippet">Another one.</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	results, err := ParseResults(strings.NewReader(fixtureHTML), 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Berlin Weather", results[0].Title)
	assert.Equal(t, "https://example.com/weather", results[0].URL)
	assert.Equal(t, "Sunny with a high of 21C.", results[0].Snippet)

	// Non-redirect links pass through untouched.
	assert.Equal(t, "https://example.org/forecast", results[1].URL)
}

func TestParseResultsHonorsMaxResults(t *testing.T) {
	results, err := ParseResults(strings.NewReader(fixtureHTML), 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestParseResultsEmptyDocument(t *testing.T) {
	results, err := ParseResults(strings.NewReader("<html><body></body></html>"), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFormatResults(t *testing.T) {
	text := FormatResults([]Result{
		{Title: "Berlin Weather", URL: "https://example.com/w", Snippet: "Sunny."},
		{Title: "Forecast", URL: "https://example.org/f", Snippet: "Rain later."},
	})
	assert.Contains(t, text, "[1] Berlin Weather")
	assert.Contains(t, text, "https://example.com/w")
	assert.Contains(t, text, "[2] Forecast")
}

func TestFormatResultsEmpty(t *testing.T) {
	assert.Equal(t, "No results found.", FormatResults(nil))
}

func TestCleanResultURL(t *testing.T) {
	assert.Equal(t, "https://example.com/x",
		cleanResultURL("/l/?uddg=https%3A%2F%2Fexample.com%2Fx"))
	assert.Equal(t, "https://plain.example.com",
		cleanResultURL("https://plain.example.com"))
}
