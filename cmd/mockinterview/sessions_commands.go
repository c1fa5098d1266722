package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mockinterview/internal/clock"
	"mockinterview/internal/interview"
	"mockinterview/internal/sessionstore"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Browse and prune stored interview sessions",
	}
	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsPruneCommand(ctx))
	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var statuses []string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := sessionstore.Filter{UserID: strings.TrimSpace(userID), Limit: limit}
			for _, raw := range statuses {
				status, ok := interview.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q (expected one of %s)", raw, statusNames())
				}
				filter.Statuses = append(filter.Statuses, status)
			}

			return ctx.withSessionsAPI(cmd.Context(), func(src sessionsAPI) error {
				items, err := src.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if asJSON {
					if items == nil {
						items = []*interview.Session{}
					}
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No sessions found")
					return nil
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Candidate", "Role", "Status", "Answered", "Overall", "Started"},
					sessionRows(items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only sessions for this candidate id")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only sessions with these statuses")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print sessions as JSON")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's answers and evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withSessionsAPI(cmd.Context(), func(src sessionsAPI) error {
				session, err := src.Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if session == nil {
					return fmt.Errorf("session %s not found", id)
				}
				if asJSON {
					return writeJSON(cmd, session)
				}
				renderSession(cmd.OutOrStdout(), session, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session as JSON")
	return cmd
}

func newSessionsPruneCommand(ctx *commandContext) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished sessions older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Sessions.RetentionDays
			}
			if days <= 0 {
				return fmt.Errorf("retention is disabled; pass --days to prune")
			}
			cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
			return ctx.withStore(func(store *sessionstore.Store) error {
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d session(s) older than %d day(s)\n", removed, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Age in days (defaults to sessions.retention_days)")
	return cmd
}

func sessionRows(items []*interview.Session) [][]string {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		overall := "-"
		if s.Evaluation != nil {
			overall = strconv.Itoa(s.Evaluation.Overall)
		}
		rows = append(rows, []string{
			s.ID,
			candidateLabel(s),
			dash(s.Role),
			string(s.Status),
			fmt.Sprintf("%d/%d", len(s.Responses), len(s.Questions)),
			overall,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func renderSession(w io.Writer, s *interview.Session, colorize bool) {
	printSection(w, "Session", colorize)
	fmt.Fprintln(w, renderStatusLine("ID", statusInfo, s.ID, colorize))
	fmt.Fprintln(w, renderStatusLine("Candidate", statusInfo, candidateLabel(s), colorize))
	fmt.Fprintln(w, renderStatusLine("Role", statusInfo, dash(s.Role), colorize))
	if s.JobPostID != "" {
		fmt.Fprintln(w, renderStatusLine("Job post", statusInfo, s.JobPostID+" / "+s.ApplicationID, colorize))
	}
	statusKind := statusWarn
	if s.Status == interview.StatusCompleted {
		statusKind = statusOK
	}
	fmt.Fprintln(w, renderStatusLine("Status", statusKind, string(s.Status), colorize))
	fmt.Fprintln(w, renderStatusLine("Started", statusInfo, s.StartedAt.Local().Format(time.RFC1123), colorize))
	if s.EndedAt != nil {
		elapsed := clock.FormatElapsed(int(s.Elapsed(*s.EndedAt) / time.Second))
		fmt.Fprintln(w, renderStatusLine("Duration", statusInfo, elapsed, colorize))
	}
	fmt.Fprintln(w)

	printSection(w, "Answers", colorize)
	rows := make([][]string, 0, len(s.Questions))
	for i, q := range s.Questions {
		answered, notes := "-", ""
		if r, ok := s.ResponseFor(q.ID); ok {
			answered = clock.FormatElapsed(r.DurationSeconds)
			notes = r.Notes
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), q.Text, string(q.Category), answered, notes})
	}
	fmt.Fprint(w, renderTable([]string{"#", "Question", "Category", "Answer", "Notes"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))

	if s.Evaluation != nil {
		fmt.Fprintln(w)
		renderEvaluation(w, s.Evaluation, colorize)
	}
}

func renderEvaluation(w io.Writer, eval *interview.Evaluation, colorize bool) {
	printSection(w, "Evaluation", colorize)
	rows := make([][]string, 0, 6)
	for _, score := range eval.Scores() {
		rows = append(rows, []string{strings.ReplaceAll(score.Name, "_", " "), strconv.Itoa(score.Value)})
	}
	fmt.Fprint(w, renderTable([]string{"Score", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if eval.Feedback != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, eval.Feedback)
	}
	writeBullets(w, "Strengths", eval.Strengths)
	writeBullets(w, "Improvements", eval.Improvements)
	if eval.Scorer != "" {
		fmt.Fprintf(w, "\nScored by %s at %s\n", eval.Scorer, eval.GeneratedAt.Local().Format(time.RFC1123))
	}
}

func writeBullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func candidateLabel(s *interview.Session) string {
	if s.CandidateName != "" {
		return interview.DisplayName(s.CandidateName)
	}
	return s.UserID
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func statusNames() string {
	names := make([]string, 0, 3)
	for _, s := range interview.AllStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
