package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"mockinterview/internal/config"
	"mockinterview/internal/services"
)

// HTTPCatalog reads job posts from the job-post REST service:
//
//	GET {base}/job-posts
//	GET {base}/job-posts/{id}
//	GET {base}/applications/{id}
type HTTPCatalog struct {
	baseURL string
	token   string
	client  *http.Client
	cache   *gocache.Cache
}

// NewHTTPCatalog creates a remote catalog. Successful lookups are cached for
// the configured TTL.
func NewHTTPCatalog(cfg config.Catalog) *HTTPCatalog {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPCatalog{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.RemoteURL), "/"),
		token:   strings.TrimSpace(cfg.RemoteToken),
		client:  &http.Client{Timeout: timeout},
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// JobPost fetches a job post.
func (c *HTTPCatalog) JobPost(ctx context.Context, id string) (JobPost, error) {
	key := "job-post:" + id
	if cached, ok := c.cache.Get(key); ok {
		return cached.(JobPost), nil
	}
	var post JobPost
	if err := c.get(ctx, "/job-posts/"+url.PathEscape(id), &post); err != nil {
		return JobPost{}, err
	}
	questions, err := normalizeQuestions(post.ID, post.Questions)
	if err != nil {
		return JobPost{}, services.Wrap(services.ErrExternalService, "catalog", "job post", id, err)
	}
	post.Questions = questions
	c.cache.SetDefault(key, post)
	return post, nil
}

// Application fetches an application.
func (c *HTTPCatalog) Application(ctx context.Context, id string) (Application, error) {
	key := "application:" + id
	if cached, ok := c.cache.Get(key); ok {
		return cached.(Application), nil
	}
	var app Application
	if err := c.get(ctx, "/applications/"+url.PathEscape(id), &app); err != nil {
		return Application{}, err
	}
	c.cache.SetDefault(key, app)
	return app, nil
}

// JobPosts lists job posts. The listing is not cached.
func (c *HTTPCatalog) JobPosts(ctx context.Context) ([]JobPost, error) {
	var posts []JobPost
	if err := c.get(ctx, "/job-posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Invalidate drops every cached lookup.
func (c *HTTPCatalog) Invalidate() {
	c.cache.Flush()
}

func (c *HTTPCatalog) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "build request", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "catalog", "GET "+path, "", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "catalog", "GET "+path, "", nil)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalService, "catalog", "GET "+path,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalService, "catalog", "decode "+path, "", err)
	}
	return nil
}
