// Package registry maintains the directory of CVM-registered institutions
// used to enrich disclosure lines with the registrant's CNPJ.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Registrant is one (institution, tax id) pair scraped from the regulator.
type Registrant struct {
	Name string `json:"name"`
	CNPJ string `json:"cnpj"`
}

// Client fetches the registrant table published by the regulator. The page
// is windows-1252 encoded HTML with one table of (CNPJ, name) rows.
type Client struct {
	url        string
	httpClient *http.Client
	baseDelay  time.Duration
	maxRetries int
}

// NewClient creates a registrant directory client.
func NewClient(url string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseDelay:  baseDelay,
		maxRetries: maxRetries,
	}
}

// FetchDirectory downloads and parses the full registrant table.
func (c *Client) FetchDirectory(ctx context.Context) ([]Registrant, error) {
	body, err := c.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	utf8Body, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), charmap.Windows1252.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decoding registrant page charset: %w", err)
	}

	registrants, err := parseDirectoryTable(string(utf8Body))
	if err != nil {
		return nil, err
	}
	if len(registrants) == 0 {
		return nil, fmt.Errorf("registrant page contained no table rows")
	}
	return registrants, nil
}

func (c *Client) fetchWithRetry(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.baseDelay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating registrant request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("registrant request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading registrant response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastErr = fmt.Errorf("registrant page HTTP %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1)
	}

	return nil, lastErr
}

// parseDirectoryTable extracts (CNPJ, name) pairs from the page's table
// rows. Rows without both cells are skipped.
func parseDirectoryTable(page string) ([]Registrant, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing registrant page: %w", err)
	}

	var registrants []Registrant
	for _, row := range findAll(doc, "tr") {
		var cells []string
		for _, cell := range findAll(row, "td") {
			cells = append(cells, strings.TrimSpace(nodeText(cell)))
		}
		if len(cells) < 2 || cells[0] == "" || cells[1] == "" {
			continue
		}
		registrants = append(registrants, Registrant{
			Name: cells[1],
			CNPJ: normalizeCNPJ(cells[0]),
		})
	}
	return registrants, nil
}

// findAll collects every descendant element with the given tag, in document
// order. The matched element's own subtree is not searched again.
func findAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			found = append(found, node)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return found
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
