package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement defines an external program or device node mockinterview relies
// on. Exactly one of Command or Pattern is expected to be set.
type Requirement struct {
	Name        string
	Command     string
	Pattern     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string   `json:"name"`
	Command     string   `json:"command,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Description string   `json:"description,omitempty"`
	Optional    bool     `json:"optional"`
	Available   bool     `json:"available"`
	Detail      string   `json:"detail,omitempty"`
	Matches     []string `json:"matches,omitempty"`
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Pattern:     strings.TrimSpace(req.Pattern),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case status.Command != "":
			checkBinary(&status)
		case status.Pattern != "":
			checkDevices(&status)
		default:
			status.Detail = "not configured"
		}
		results = append(results, status)
	}
	return results
}

func checkBinary(status *Status) {
	if _, err := exec.LookPath(status.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return
	}
	status.Available = true
}

func checkDevices(status *Status) {
	paths, err := filepath.Glob(status.Pattern)
	if err != nil {
		status.Detail = fmt.Sprintf("invalid pattern %q: %v", status.Pattern, err)
		return
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.Mode()&os.ModeCharDevice == 0 {
			continue
		}
		status.Matches = append(status.Matches, path)
	}
	if len(status.Matches) == 0 {
		status.Detail = fmt.Sprintf("no device matches %q", status.Pattern)
		return
	}
	status.Available = true
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
