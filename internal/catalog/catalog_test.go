package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"mockinterview/internal/catalog"
	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

const sampleYAML = `
job_posts:
  - id: backend
    title: Backend Engineer
    company: Acme
    questions:
      - text: Describe an API you designed.
        category: Technical
        expected_duration: 150
      - id: culture
        text: Why Acme?
  - id: empty
    title: Placeholder
applications:
  - id: app-1
    job_post_id: backend
    user_id: user-1
    candidate_name: ada lovelace
  - id: app-2
    job_post_id: empty
    user_id: user-1
`

func loadSample(t *testing.T) *catalog.FileCatalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job_posts.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	return c
}

func TestFileCatalogNormalizesQuestions(t *testing.T) {
	c := loadSample(t)
	post, err := c.JobPost(context.Background(), "backend")
	if err != nil {
		t.Fatalf("JobPost returned error: %v", err)
	}
	if len(post.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(post.Questions))
	}
	first, second := post.Questions[0], post.Questions[1]
	if first.ID != "backend-q1" || first.Category != interview.CategoryTechnical || first.ExpectedDuration != 150 {
		t.Fatalf("unexpected first question %+v", first)
	}
	if second.ID != "culture" || second.Category != interview.CategoryGeneral || second.ExpectedDuration != 120 {
		t.Fatalf("unexpected second question %+v", second)
	}
	posts, _ := c.JobPosts(context.Background())
	if len(posts) != 2 || posts[0].ID != "backend" {
		t.Fatalf("unexpected listing %+v", posts)
	}
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	c, err := catalog.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if _, err := c.JobPost(context.Background(), "x"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"missing id":     "job_posts:\n  - title: x\n",
		"duplicate post": "job_posts:\n  - id: a\n  - id: a\n",
		"empty question": "job_posts:\n  - id: a\n    questions:\n      - text: ' '\n",
		"dangling app":   "applications:\n  - id: x\n    job_post_id: nope\n",
		"malformed yaml": "job_posts: [",
		"duplicate q id": "job_posts:\n  - id: a\n    questions:\n      - {id: q, text: one}\n      - {id: q, text: two}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := catalog.Parse([]byte(body)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	c := loadSample(t)
	ctx := context.Background()

	resolved, err := catalog.Resolve(ctx, c, "user-1", "backend", "app-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	questions := resolved.Questions()
	if len(questions) != 2 || resolved.Application.CandidateName != "ada lovelace" {
		t.Fatalf("unexpected resolution %+v", resolved)
	}

	failures := []struct {
		name            string
		user, post, app string
		catalog         catalog.Catalog
	}{
		{"unknown post", "user-1", "nope", "app-1", c},
		{"unknown application", "user-1", "backend", "nope", c},
		{"application for other post", "user-1", "backend", "app-2", c},
		{"application for other user", "user-2", "backend", "app-1", c},
		{"post without questions", "user-1", "empty", "app-2", c},
		{"blank ids", "user-1", "", "", c},
		{"no catalog", "user-1", "backend", "app-1", nil},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.Resolve(ctx, tc.catalog, tc.user, tc.post, tc.app)
			if !errors.Is(err, services.ErrMissingContext) {
				t.Fatalf("expected ErrMissingContext, got %v", err)
			}
		})
	}
}

func TestHTTPCatalogCachesLookups(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/job-posts/backend":
			_, _ = w.Write([]byte(`{"id":"backend","title":"Backend","questions":[{"text":"Tell me about Go.","category":"technical","expectedDuration":100}]}`))
		case "/api/applications/app-1":
			_, _ = w.Write([]byte(`{"id":"app-1","jobPostId":"backend","userId":"user-1"}`))
		case "/api/job-posts":
			_, _ = w.Write([]byte(`[{"id":"backend","title":"Backend"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := catalog.NewHTTPCatalog(config.Catalog{RemoteURL: srv.URL + "/api/", RemoteToken: "secret", CacheTTLSeconds: 60})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		post, err := c.JobPost(ctx, "backend")
		if err != nil {
			t.Fatalf("JobPost returned error: %v", err)
		}
		if post.Questions[0].ID != "backend-q1" || post.Questions[0].ExpectedDuration != 100 {
			t.Fatalf("unexpected question %+v", post.Questions[0])
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream request, got %d", hits.Load())
	}

	if _, err := catalog.Resolve(ctx, c, "user-1", "backend", "app-1"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if _, err := c.JobPost(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	posts, err := c.JobPosts(ctx)
	if err != nil || len(posts) != 1 {
		t.Fatalf("unexpected listing %v err=%v", posts, err)
	}

	c.Invalidate()
	if _, err := c.JobPost(ctx, "backend"); err != nil {
		t.Fatalf("JobPost after invalidate returned error: %v", err)
	}
}

func TestHTTPCatalogReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := catalog.NewHTTPCatalog(config.Catalog{RemoteURL: srv.URL})
	if _, err := c.Application(context.Background(), "a"); !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.JobPostsFile = filepath.Join(t.TempDir(), "none.yaml")
	c, err := catalog.New(&cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := c.(*catalog.FileCatalog); !ok {
		t.Fatalf("expected file catalog, got %T", c)
	}
	cfg.Catalog.RemoteURL = "http://example.invalid"
	c, _ = catalog.New(&cfg)
	if _, ok := c.(*catalog.HTTPCatalog); !ok {
		t.Fatalf("expected http catalog, got %T", c)
	}
}
