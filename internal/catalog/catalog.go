package catalog

import (
	"context"
	"errors"
	"strings"

	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

// JobPost is an opening with its authored interview questions.
type JobPost struct {
	ID          string               `json:"id" yaml:"id"`
	Title       string               `json:"title" yaml:"title"`
	Company     string               `json:"company,omitempty" yaml:"company,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []interview.Question `json:"questions" yaml:"questions"`
}

// Application links a candidate to a job post.
type Application struct {
	ID            string `json:"id" yaml:"id"`
	JobPostID     string `json:"jobPostId" yaml:"job_post_id"`
	UserID        string `json:"userId" yaml:"user_id"`
	CandidateName string `json:"candidateName,omitempty" yaml:"candidate_name,omitempty"`
}

// Catalog looks up job posts and applications. Missing records return an
// error wrapping services.ErrNotFound.
type Catalog interface {
	JobPost(ctx context.Context, id string) (JobPost, error)
	Application(ctx context.Context, id string) (Application, error)
	JobPosts(ctx context.Context) ([]JobPost, error)
}

// Resolved is the context of a job-tailored interview.
type Resolved struct {
	JobPost     JobPost
	Application Application
}

// Questions returns a copy of the job post's questions.
func (r Resolved) Questions() []interview.Question {
	out := make([]interview.Question, len(r.JobPost.Questions))
	for i, q := range r.JobPost.Questions {
		q.Guidance = append([]string(nil), q.Guidance...)
		out[i] = q
	}
	return out
}

// Resolve loads the job post and application for a job-tailored start. Any
// gap, including an application that belongs to another user or job post or
// a job post with no questions, is reported as services.ErrMissingContext.
func Resolve(ctx context.Context, c Catalog, userID, jobPostID, applicationID string) (Resolved, error) {
	jobPostID = strings.TrimSpace(jobPostID)
	applicationID = strings.TrimSpace(applicationID)
	if c == nil {
		return Resolved{}, services.Wrap(services.ErrMissingContext, "catalog", "resolve", "no job catalog configured", nil)
	}
	if jobPostID == "" || applicationID == "" {
		return Resolved{}, services.Wrap(services.ErrMissingContext, "catalog", "resolve", "job post and application are required", nil)
	}

	post, err := c.JobPost(ctx, jobPostID)
	if err != nil {
		return Resolved{}, missing("job post "+jobPostID, err)
	}
	app, err := c.Application(ctx, applicationID)
	if err != nil {
		return Resolved{}, missing("application "+applicationID, err)
	}
	if app.JobPostID != post.ID {
		return Resolved{}, services.Wrap(services.ErrMissingContext, "catalog", "resolve", "application "+app.ID+" is not for job post "+post.ID, nil)
	}
	if userID != "" && app.UserID != "" && app.UserID != userID {
		return Resolved{}, services.Wrap(services.ErrMissingContext, "catalog", "resolve", "application "+app.ID+" belongs to another candidate", nil)
	}
	if len(post.Questions) == 0 {
		return Resolved{}, services.Wrap(services.ErrMissingContext, "catalog", "resolve", "job post "+post.ID+" has no questions", nil)
	}
	return Resolved{JobPost: post, Application: app}, nil
}

func missing(what string, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return services.Wrap(services.ErrMissingContext, "catalog", "resolve", what+" not found", err)
	}
	return services.Wrap(services.ErrMissingContext, "catalog", "resolve", what+" unavailable", err)
}

// New builds the catalog selected by configuration: the remote service when a
// URL is set, otherwise the YAML file.
func New(cfg *config.Config) (Catalog, error) {
	if cfg == nil {
		return &FileCatalog{}, nil
	}
	if strings.TrimSpace(cfg.Catalog.RemoteURL) != "" {
		return NewHTTPCatalog(cfg.Catalog), nil
	}
	return LoadFile(cfg.Catalog.JobPostsFile)
}
