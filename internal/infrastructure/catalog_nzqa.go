package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// NZQACatalog implements domain.Catalog by scraping the NZQA standard detail page
type NZQACatalog struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewNZQACatalog creates a catalog client
func NewNZQACatalog(config *domain.CatalogConfig, logger *zap.Logger) *NZQACatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NZQACatalog{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
	}
}

// Lookup fetches and parses the metadata of a standard
func (c *NZQACatalog) Lookup(ctx context.Context, id domain.StandardID) (*domain.Standard, error) {
	u := fmt.Sprintf("%s/ncea/assessment/view-detailed.do?standardNumber=%s", c.baseURL, url.QueryEscape(string(id)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s (status code %d)", domain.ErrStandardNotFound, id, resp.StatusCode)
	}

	standard, err := ParseStandardPage(id, resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Catalog lookup",
		zap.String("standard", string(id)),
		zap.String("title", standard.Title))

	return standard, nil
}

// ParseStandardPage extracts the standard details from the "noHover" table.
// The second cell of the last row lists credits, assessment type, level and
// title on separate lines.
func ParseStandardPage(id domain.StandardID, r io.Reader) (*domain.Standard, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog page: %w", err)
	}

	table := findElement(doc, func(n *html.Node) bool {
		return n.Data == "table" && hasClass(n, "noHover")
	})
	if table == nil {
		return nil, fmt.Errorf("%w: no details table for %s", domain.ErrMalformedTitle, id)
	}

	var values []string
	walk(table, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "tr" {
			return
		}
		var cells []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "td" {
				cells = append(cells, c)
			}
		}
		if len(cells) < 2 {
			return
		}
		values = values[:0]
		for _, line := range strings.Split(nodeText(cells[1]), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				values = append(values, line)
			}
		}
	})

	if len(values) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 detail lines for %s, got %d", domain.ErrMalformedTitle, id, len(values))
	}

	title := strings.Join(values[3:], " ")
	if i := strings.Index(title, " ("); i >= 0 {
		title = title[:i]
	}

	return &domain.Standard{
		ID:         id,
		Title:      strings.TrimSpace(title),
		Credits:    values[0],
		Assessment: values[1],
		Level:      values[2],
	}, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// nodeText concatenates text content, turning <br> into newlines
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
		}
	})
	return sb.String()
}
