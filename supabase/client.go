// Package supabase talks to the Supabase PostgREST and Storage APIs used as
// the canonical store for published posts and the public bucket for header
// images.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"seobot/blog"
)

const blogTable = "blog_posts"

// Client is a thin REST client over one Supabase project.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
	verbose    bool
	logger     *log.Logger
}

// New creates a Client. The bucket may be empty when image upload is not
// configured; Upload then fails with a descriptive error.
func New(baseURL, serviceKey, bucket string, client *http.Client, verbose bool, logger *log.Logger) (*Client, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, errors.New("supabase url and service key are required")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     client,
		verbose:    verbose,
		logger:     logger,
	}, nil
}

func (c *Client) infof(format string, args ...interface{}) {
	if !c.verbose {
		return
	}
	c.logger.Printf("[supabase] "+format, args...)
}

// ExistsBySlug reports whether a post with the slug is already stored.
func (c *Client) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=id&slug=eq.%s&limit=1",
		c.baseURL, blogTable, url.QueryEscape(slug))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return false, err
	}
	return len(gjson.ParseBytes(body).Array()) > 0, nil
}

// PublishedSummaries returns title/slug/category/excerpt for published posts.
// The result is advisory; callers tolerate an empty list.
func (c *Client) PublishedSummaries(ctx context.Context) ([]blog.Summary, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=title,slug,category,excerpt&status=eq.published",
		c.baseURL, blogTable)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var summaries []blog.Summary
	for _, row := range gjson.ParseBytes(body).Array() {
		summaries = append(summaries, blog.Summary{
			Title:    row.Get("title").String(),
			Slug:     row.Get("slug").String(),
			Category: row.Get("category").String(),
			Excerpt:  row.Get("excerpt").String(),
		})
	}
	return summaries, nil
}

// Insert stores one record. A uniqueness violation maps to
// blog.ErrAlreadyExists so the committer's idempotency guard also covers the
// store-level constraint.
func (c *Client) Insert(ctx context.Context, rec blog.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, blogTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusConflict || gjson.GetBytes(body, "code").String() == "23505" {
		return fmt.Errorf("insert %q: %w", rec.Slug, blog.ErrAlreadyExists)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("insert failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return errors.New("insert returned no data")
	}
	c.infof("inserted post slug=%s", rec.Slug)
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase query failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}
