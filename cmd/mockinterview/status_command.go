package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mockinterview/internal/api"
	"mockinterview/internal/deps"
	"mockinterview/internal/interview"
	"mockinterview/internal/preflight"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

type statusReport struct {
	Daemon       *api.DaemonStatus  `json:"daemon,omitempty"`
	DaemonError  string             `json:"daemonError,omitempty"`
	Capture      string             `json:"capture"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Sessions     map[string]int     `json:"sessions"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, host and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				Capture: preflight.ProbeCapture(cfg).Detail(),
				Checks:  preflight.RunAll(cmd.Context(), cfg),
			}

			status, err := ctx.client().Status(cmd.Context())
			switch {
			case err == nil:
				report.Daemon = &status
				report.Dependencies = status.Dependencies
				report.Sessions = status.Sessions
			case errors.Is(err, api.ErrDaemonUnavailable):
			default:
				report.DaemonError = wrapDaemonError(err, ctx.apiAddress()).Error()
			}
			if report.Dependencies == nil {
				report.Dependencies = preflight.CheckSystemDeps(cfg)
			}
			if report.Sessions == nil {
				err := ctx.withStore(func(store *sessionstore.Store) error {
					stats, err := store.Stats(cmd.Context())
					if err != nil {
						return err
					}
					report.Sessions = statsMap(stats)
					return nil
				})
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd, report)
			}
			renderStatusReport(cmd.OutOrStdout(), report, ctx.apiAddress(), shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func renderStatusReport(w io.Writer, report statusReport, addr string, colorize bool) {
	printSection(w, "System Status", colorize)
	switch {
	case report.Daemon != nil:
		detail := fmt.Sprintf("Running (pid %d, %s)", report.Daemon.PID, addr)
		fmt.Fprintln(w, renderStatusLine("Daemon", statusOK, detail, colorize))
		fmt.Fprintln(w, renderStatusLine("Live clients", statusInfo, strconv.Itoa(report.Daemon.Subscribers), colorize))
	case report.DaemonError != "":
		fmt.Fprintln(w, renderStatusLine("Daemon", statusError, report.DaemonError, colorize))
	default:
		fmt.Fprintln(w, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Capture", statusInfo, report.Capture, colorize))
	for _, check := range report.Checks {
		fmt.Fprintln(w, renderStatusLine(check.Name, passKind(check.Passed, false), check.Detail, colorize))
	}
	fmt.Fprintln(w)

	printSection(w, "Dependencies", colorize)
	for _, line := range dependencyLines(report.Dependencies, colorize) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	printSection(w, "Sessions", colorize)
	rows, total := sessionCountRows(report.Sessions)
	if total == 0 {
		fmt.Fprintln(w, "No sessions recorded")
	} else {
		fmt.Fprint(w, renderTableWithFooter([]string{"Status", "Count"}, rows, []string{"Total", strconv.Itoa(total)}, []columnAlignment{alignLeft, alignRight}))
	}

	if report.Daemon != nil && len(report.Daemon.Live) > 0 {
		fmt.Fprintln(w)
		printSection(w, "Live Sessions", colorize)
		fmt.Fprint(w, renderTable([]string{"Session", "Candidate", "State", "Elapsed"}, liveRows(report.Daemon.Live), nil))
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missing := deps.Missing(statuses)
	lines := make([]string, 0, len(statuses)+2)
	summary := "All required dependencies ready"
	summaryKind := statusOK
	if len(statuses) == 0 {
		summary, summaryKind = "Nothing required by the current backends", statusInfo
	} else if len(missing) > 0 {
		summary, summaryKind = fmt.Sprintf("%d of %d required dependencies missing", len(missing), len(statuses)), statusError
	}
	lines = append(lines, renderStatusLine("Summary", summaryKind, summary, colorize))

	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			switch {
			case dep.Command != "":
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			case len(dep.Matches) > 0:
				message = fmt.Sprintf("Ready (%s)", strings.Join(dep.Matches, ", "))
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := dep.Detail
		if detail == "" {
			detail = "not available"
		}
		lines = append(lines, renderStatusLine(dep.Name, passKind(false, dep.Optional), detail, colorize))
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, dep := range missing {
			names = append(names, dep.Name)
		}
		lines = append(lines, statusIndent+"Missing dependencies: "+strings.Join(names, ", "))
	}
	return lines
}

// sessionCountRows lists every known status in lifecycle order, then any
// unknown ones alphabetically.
func sessionCountRows(counts map[string]int) ([][]string, int) {
	total := 0
	seen := make(map[string]bool, len(counts))
	var rows [][]string
	for _, status := range interview.AllStatuses() {
		key := string(status)
		seen[key] = true
		n := counts[key]
		total += n
		rows = append(rows, []string{key, strconv.Itoa(n)})
	}
	var extra []string
	for key := range counts {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		total += counts[key]
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	return rows, total
}

func statsMap(stats sessionstore.Stats) map[string]int {
	out := make(map[string]int, len(stats))
	for status, n := range stats {
		out[string(status)] = n
	}
	return out
}

func liveRows(live []sessions.Summary) [][]string {
	rows := make([][]string, 0, len(live))
	for _, s := range live {
		candidate := s.Candidate
		if candidate == "" {
			candidate = s.UserID
		}
		rows = append(rows, []string{shortID(s.SessionID), candidate, s.State.String(), s.Elapsed})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
