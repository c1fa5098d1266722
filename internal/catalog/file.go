package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

const defaultExpectedDuration = 120

type catalogFile struct {
	JobPosts     []JobPost     `yaml:"job_posts"`
	Applications []Application `yaml:"applications"`
}

// FileCatalog is an in-memory catalog loaded from YAML.
type FileCatalog struct {
	path         string
	posts        map[string]JobPost
	applications map[string]Application
}

// LoadFile reads path. A missing file yields an empty catalog.
func LoadFile(path string) (*FileCatalog, error) {
	c := &FileCatalog{path: path, posts: map[string]JobPost{}, applications: map[string]Application{}}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read job posts file %s: %w", path, err)
	}
	if err := c.parse(data); err != nil {
		return nil, fmt.Errorf("job posts file %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*FileCatalog, error) {
	c := &FileCatalog{posts: map[string]JobPost{}, applications: map[string]Application{}}
	if err := c.parse(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCatalog) parse(data []byte) error {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	for i, post := range raw.JobPosts {
		post.ID = strings.TrimSpace(post.ID)
		if post.ID == "" {
			return fmt.Errorf("%w: job_posts[%d] missing id", services.ErrValidation, i)
		}
		if _, dup := c.posts[post.ID]; dup {
			return fmt.Errorf("%w: duplicate job post %q", services.ErrValidation, post.ID)
		}
		questions, err := normalizeQuestions(post.ID, post.Questions)
		if err != nil {
			return err
		}
		post.Questions = questions
		c.posts[post.ID] = post
	}
	for i, app := range raw.Applications {
		app.ID = strings.TrimSpace(app.ID)
		if app.ID == "" {
			return fmt.Errorf("%w: applications[%d] missing id", services.ErrValidation, i)
		}
		if _, dup := c.applications[app.ID]; dup {
			return fmt.Errorf("%w: duplicate application %q", services.ErrValidation, app.ID)
		}
		if _, ok := c.posts[app.JobPostID]; !ok {
			return fmt.Errorf("%w: application %q references unknown job post %q", services.ErrValidation, app.ID, app.JobPostID)
		}
		c.applications[app.ID] = app
	}
	return nil
}

func normalizeQuestions(postID string, questions []interview.Question) ([]interview.Question, error) {
	seen := make(map[string]struct{}, len(questions))
	out := make([]interview.Question, 0, len(questions))
	for i, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return nil, fmt.Errorf("%w: job post %q question %d has no text", services.ErrValidation, postID, i+1)
		}
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = fmt.Sprintf("%s-q%d", postID, i+1)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: job post %q repeats question id %q", services.ErrValidation, postID, q.ID)
		}
		seen[q.ID] = struct{}{}
		q.Category = interview.ParseCategory(string(q.Category))
		if q.ExpectedDuration <= 0 {
			q.ExpectedDuration = defaultExpectedDuration
		}
		out = append(out, q)
	}
	return out, nil
}

// Path returns the file the catalog was loaded from.
func (c *FileCatalog) Path() string { return c.path }

// JobPost returns a job post by id.
func (c *FileCatalog) JobPost(_ context.Context, id string) (JobPost, error) {
	post, ok := c.posts[id]
	if !ok {
		return JobPost{}, services.Wrap(services.ErrNotFound, "catalog", "job post", id, nil)
	}
	return post, nil
}

// Application returns an application by id.
func (c *FileCatalog) Application(_ context.Context, id string) (Application, error) {
	app, ok := c.applications[id]
	if !ok {
		return Application{}, services.Wrap(services.ErrNotFound, "catalog", "application", id, nil)
	}
	return app, nil
}

// JobPosts lists every job post ordered by id.
func (c *FileCatalog) JobPosts(context.Context) ([]JobPost, error) {
	out := make([]JobPost, 0, len(c.posts))
	for _, post := range c.posts {
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
