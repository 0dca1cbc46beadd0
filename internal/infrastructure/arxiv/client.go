package arxiv

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"paperdigest/internal/config"
	"paperdigest/internal/domain"
	"paperdigest/internal/ports"
)

const userAgent = "paperdigest/1.0"

// Client fetches recent papers from the arXiv Atom API, newest first.
type Client struct {
	baseURL    string
	query      string
	maxResults int
	maxTries   uint
	parser     *gofeed.Parser
	sanitizer  *bluemonday.Policy
	logger     *slog.Logger
}

var _ ports.PaperSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 20s timeout default.
func NewClient(cfg config.ArxivConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = userAgent

	return &Client{
		baseURL:    cfg.BaseURL,
		query:      cfg.Query,
		maxResults: cfg.MaxResults,
		maxTries:   3,
		parser:     parser,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// Fetch queries the API sorted by descending submission date and maps
// feed entries to domain papers. Entries missing an identifier or
// publish time are skipped; transport failures are returned after the
// retry budget is exhausted and abort the run upstream.
func (c *Client) Fetch(ctx context.Context) ([]domain.Paper, error) {
	endpoint, err := c.buildQueryURL()
	if err != nil {
		return nil, err
	}

	operation := func() (*gofeed.Feed, error) {
		feed, err := c.parser.ParseURLWithContext(endpoint, ctx)
		if err != nil {
			var httpErr gofeed.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return feed, nil
	}

	feed, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(newRetryBackoff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.GUID == "" || item.PublishedParsed == nil {
			c.debug("skip malformed feed entry", "title", itemTitle(item))
			continue
		}

		authors := make([]string, 0, len(item.Authors))
		for _, author := range item.Authors {
			if author != nil && author.Name != "" {
				authors = append(authors, author.Name)
			}
		}

		papers = append(papers, domain.Paper{
			ID:          item.GUID,
			Title:       c.cleanText(item.Title),
			Authors:     authors,
			Summary:     c.cleanText(item.Description),
			PublishedAt: item.PublishedParsed.UTC(),
		})
	}

	c.debug("arxiv fetch done", "entries", len(feed.Items), "papers", len(papers))
	return papers, nil
}

func (c *Client) buildQueryURL() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv base url %s: %w", c.baseURL, err)
	}

	query := parsed.Query()
	query.Set("search_query", c.query)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("max_results", strconv.Itoa(c.maxResults))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// cleanText strips markup from feed fields and collapses the line
// breaks arXiv inserts into abstracts.
func (c *Client) cleanText(raw string) string {
	stripped := c.sanitizer.Sanitize(raw)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

func newRetryBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.Multiplier = 2
	return bo
}

func itemTitle(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	return item.Title
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
