package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// Article is the readable content of a rendered page
type Article struct {
	Title string
	Body  string
}

// FetchError indicates the page could not be rendered at all (navigation
// timeout, DNS failure, non-HTML content)
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError indicates the page rendered but no usable title or body
// could be derived from it
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract content from %s: %s", e.URL, e.Reason)
}

// pageFetcher renders a URL and returns its markup
type pageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Extractor reduces an article URL to clean title and body text
type Extractor struct {
	fetcher pageFetcher
}

// NewExtractor creates an extractor backed by the given page fetcher
func NewExtractor(fetcher pageFetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// Extract renders pageURL and runs readability over the captured markup
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Article, error) {
	html, err := e.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return FromHTML(html, pageURL)
}

// FromHTML runs readability over already-rendered markup. Split out from
// Extract so extraction is testable without a browser.
func FromHTML(html, pageURL string) (*Article, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Reason: "invalid url"}
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Reason: err.Error()}
	}

	title := strings.TrimSpace(article.Title)
	body := strings.TrimSpace(article.TextContent)

	if title == "" {
		return nil, &ExtractionError{URL: pageURL, Reason: "no title found"}
	}
	if body == "" {
		return nil, &ExtractionError{URL: pageURL, Reason: "no body text found"}
	}

	return &Article{Title: title, Body: body}, nil
}
