package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const htmlEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo queries the HTML (non-JS) endpoint and scrapes the result list.
// No API key required, which matches how the assistant is deployed.
type DuckDuckGo struct {
	Client *http.Client
	// VideoOnly constrains queries to video sources (the search_video
	// action) by appending a site filter.
	VideoOnly bool
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{Client: http.DefaultClient}
}

var _ Searcher = (*DuckDuckGo)(nil)

func (d *DuckDuckGo) Query(ctx context.Context, text string, maxResults int) ([]Result, error) {
	q := text
	if d.VideoOnly {
		q = text + " site:youtube.com"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		htmlEndpoint+"?q="+url.QueryEscape(q), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("User-Agent", "valet/1.0")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("search returned status %d", resp.StatusCode)
	}

	results, err := ParseResults(resp.Body, maxResults)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("query", q).Int("results", len(results)).Msg("search: query completed")
	return results, nil
}

// ParseResults extracts results from the HTML result page. Split out from
// Query so the scraping can be tested against fixture documents.
func ParseResults(r io.Reader, maxResults int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse search results")
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := sel.Find("a.result__a")
		href, _ := title.Attr("href")
		res := Result{
			Title:   strings.TrimSpace(title.Text()),
			URL:     cleanResultURL(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		}
		if res.Title == "" {
			return true
		}
		results = append(results, res)
		return maxResults <= 0 || len(results) < maxResults
	})
	return results, nil
}

// cleanResultURL unwraps the duckduckgo redirect (/l/?uddg=<target>).
func cleanResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
