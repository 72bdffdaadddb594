package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/voocel/copilot/tools"
)

const (
	webScraperDescription = "Useful to scrape web pages, and extract text content."
	defaultMaxBodySize    = 5 * 1024 * 1024
)

// WebScraperArgs are the named parameters of tool_web_scraper.
type WebScraperArgs struct {
	URL string `json:"url"`
}

// WebScraper fetches a page and extracts its main text, keeping links.
type WebScraper struct {
	client      *http.Client
	maxBodySize int64
}

// ScraperOption configures a WebScraper.
type ScraperOption func(*WebScraper)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) ScraperOption {
	return func(s *WebScraper) {
		if client != nil {
			s.client = client
		}
	}
}

// WithMaxBodySize limits how much of a response body is read.
func WithMaxBodySize(n int64) ScraperOption {
	return func(s *WebScraper) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

func NewWebScraper(opts ...ScraperOption) *WebScraper {
	s := &WebScraper{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tool exposes the scraper as tool_web_scraper.
func (s *WebScraper) Tool() tools.Tool {
	return tools.MustFunctionTool("tool_web_scraper", webScraperDescription,
		func(ctx context.Context, args WebScraperArgs) (string, error) {
			return s.Scrape(ctx, args.URL)
		})
}

// Scrape fetches rawURL and returns its main content as Markdown.
// Non-HTML text responses are returned as-is.
func (s *WebScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid url %q: must be an absolute http(s) URL", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "copilot-scraper/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if !utf8.Valid(body) {
		return "", errors.New("response content is not valid UTF-8")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return strings.TrimSpace(string(body)), nil
	}
	return extractMainContent(string(body), u)
}

// extractMainContent strips page chrome and converts the remaining content to Markdown.
func extractMainContent(html string, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, iframe, svg, nav, header, footer, aside, form").Remove()

	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("main").First()
	}
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}

	content, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", errors.New("no content found in page")
	}

	domain := ""
	if base != nil {
		domain = base.Scheme + "://" + base.Host
	}
	converter := md.NewConverter(domain, true, nil)
	markdown, err := converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
