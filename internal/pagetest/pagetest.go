// Package pagetest visits a running HTTP server the way a browser would and
// exposes the response for assertions.
package pagetest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Page is a fetched response.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the response Content-Type header.
func (p *Page) ContentType() string {
	return p.Header.Get("Content-Type")
}

// Document parses the body as HTML.
func (p *Page) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
}

// HasContent reports whether the visible page text contains text, ignoring
// differences in whitespace.
func (p *Page) HasContent(text string) bool {
	doc, err := p.Document()
	if err != nil {
		return false
	}
	return strings.Contains(normalizeSpaces(doc.Find("body").Text()), normalizeSpaces(text))
}

// Client fetches pages relative to a base URL.
type Client struct {
	baseURL   string
	transport http.RoundTripper
}

// New returns a Client for baseURL. A nil transport uses colly's default.
func New(baseURL string, transport http.RoundTripper) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), transport: transport}
}

// Visit fetches path with the given query. Error statuses are returned as
// pages rather than errors.
func (c *Client) Visit(path string, query url.Values) (*Page, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}

	var page *Page
	collector.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
		}
	})

	if err := collector.Visit(target); err != nil {
		return nil, fmt.Errorf("visit %s: %w", target, err)
	}
	if page == nil {
		return nil, errors.New("visit " + target + ": no response")
	}
	return page, nil
}

func normalizeSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
