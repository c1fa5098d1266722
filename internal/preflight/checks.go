package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sys/unix"

	"mockinterview/internal/catalog"
	"mockinterview/internal/config"
	"mockinterview/internal/deps"
)

// CheckLLM verifies that the OpenAI-compatible API is reachable and the key is
// accepted by listing models. It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	client := openai.NewClientWithConfig(clientCfg)

	models, err := client.ListModels(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return Result{Name: name, Passed: true, Detail: "API reachable"}
	}
	for _, m := range models.Models {
		if m.ID == model {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", model)}
		}
	}
	// Some gateways list a subset of what they serve.
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (model %s not listed)", model)}
}

// CheckCatalog verifies that the configured job catalog can list job posts.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	const name = "Job catalog"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	source := strings.TrimSpace(cfg.Catalog.RemoteURL)
	if source == "" {
		source = cfg.Catalog.JobPostsFile
	}
	c, err := catalog.New(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", source, err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	posts, err := c.JobPosts(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", source, err)}
	}
	if len(posts) == 0 {
		// Fallback questions still work without a catalog.
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (no job posts, fallback questions only)", source)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d job posts)", source, len(posts))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the programs and device nodes the configured
// narration and capture backends need. Both the daemon and the CLI status
// command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	var requirements []deps.Requirement
	if strings.EqualFold(cfg.Narration.Backend, config.NarrationCommand) {
		requirements = append(requirements, deps.Requirement{
			Name:        "Speech synthesizer",
			Command:     cfg.Narration.Command,
			Description: "Required for spoken narration",
		})
	}
	if strings.EqualFold(cfg.Capture.Backend, config.CaptureDevices) {
		requirements = append(requirements,
			deps.Requirement{
				Name:        "Camera",
				Pattern:     cfg.Capture.VideoPattern,
				Description: "Required for video capture",
			},
			deps.Requirement{
				Name:        "Microphone",
				Pattern:     cfg.Capture.AudioPattern,
				Description: "Required for audio capture",
			},
		)
	}
	return deps.Check(requirements)
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		}
		return fmt.Sprintf("API error (%d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		}
		return fmt.Sprintf("request failed (%d)", reqErr.HTTPStatusCode)
	}
	return err.Error()
}
