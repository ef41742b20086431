// Package websearch provides a small DuckDuckGo client used to ground
// chat replies in recent facts. It needs no API key: the instant-answer
// JSON API is tried first, with the HTML results page as fallback.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const userAgent = "legalchat/1.0 (+https://github.com/iuristatech/legalchat)"

// Result is a single search hit.
type Result struct {
	Title string
	Body  string
	Href  string
}

// Client queries DuckDuckGo.
type Client struct {
	httpClient *http.Client
	apiBase    string
	htmlBase   string
}

// NewClient returns a client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBase:    "https://api.duckduckgo.com",
		htmlBase:   "https://html.duckduckgo.com",
	}
}

// Search returns up to maxResults hits for the query. Any transport or
// parse failure is returned as an error; callers are expected to treat
// the search as best-effort and degrade to no results.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	results, err := c.instantAnswer(ctx, query, maxResults)
	if err == nil && len(results) > 0 {
		return results, nil
	}
	return c.htmlResults(ctx, query, maxResults)
}

// instantAnswer queries the DuckDuckGo Instant Answer API.
func (c *Client) instantAnswer(ctx context.Context, query string, maxResults int) ([]Result, error) {
	u := fmt.Sprintf(
		"%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		c.apiBase, url.QueryEscape(query),
	)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Abstract       string `json:"Abstract"`
		AbstractSource string `json:"AbstractSource"`
		AbstractURL    string `json:"AbstractURL"`
		Heading        string `json:"Heading"`
		RelatedTopics  []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode instant-answer response")
	}

	var results []Result
	if payload.Abstract != "" {
		results = append(results, Result{
			Title: payload.Heading,
			Body:  payload.Abstract,
			Href:  payload.AbstractURL,
		})
	}
	for _, rt := range payload.RelatedTopics {
		if len(results) >= maxResults {
			break
		}
		if rt.Text == "" {
			continue
		}
		results = append(results, Result{
			Title: titleFromText(rt.Text),
			Body:  rt.Text,
			Href:  rt.FirstURL,
		})
	}
	return results, nil
}

var (
	resultLinkRe    = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]*>`)
)

// htmlResults scrapes the HTML results page as a fallback.
func (c *Client) htmlResults(ctx context.Context, query string, maxResults int) ([]Result, error) {
	u := fmt.Sprintf("%s/html/?q=%s", c.htmlBase, url.QueryEscape(query))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	links := resultLinkRe.FindAllStringSubmatch(string(body), maxResults)
	snippets := resultSnippetRe.FindAllStringSubmatch(string(body), maxResults)
	if len(links) == 0 {
		return nil, errors.Errorf("duckduckgo returned no results for %q", query)
	}

	results := make([]Result, 0, len(links))
	for i, link := range links {
		r := Result{
			Href:  html.UnescapeString(link[1]),
			Title: stripTags(link[2]),
		}
		if i < len(snippets) {
			r.Body = stripTags(snippets[i][1])
		}
		results = append(results, r)
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search request")
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("search returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func stripTags(s string) string {
	return html.UnescapeString(strings.TrimSpace(htmlTagRe.ReplaceAllString(s, "")))
}

// titleFromText derives a short title from an instant-answer topic text.
func titleFromText(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	if runes := []rune(text); len(runes) > 80 {
		return string(runes[:80])
	}
	return text
}
