package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mockinterview/internal/catalog"
	"mockinterview/internal/clock"
	"mockinterview/internal/interview"
)

func newQuestionsCommand(ctx *commandContext) *cobra.Command {
	var jobPostID string
	var listJobs bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Show the question set an interview would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if listJobs || strings.TrimSpace(jobPostID) != "" {
				jobs, err := catalog.New(cfg)
				if err != nil {
					return fmt.Errorf("load job catalog: %w", err)
				}
				if listJobs {
					posts, err := jobs.JobPosts(cmd.Context())
					if err != nil {
						return err
					}
					if asJSON {
						return writeJSON(cmd, posts)
					}
					if len(posts) == 0 {
						fmt.Fprintln(out, "No job posts in the catalog")
						return nil
					}
					rows := make([][]string, 0, len(posts))
					for _, p := range posts {
						rows = append(rows, []string{p.ID, p.Title, dash(p.Company), strconv.Itoa(len(p.Questions))})
					}
					fmt.Fprint(out, renderTable([]string{"ID", "Title", "Company", "Questions"}, rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
					return nil
				}
				post, err := jobs.JobPost(cmd.Context(), strings.TrimSpace(jobPostID))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, post.Questions)
				}
				fmt.Fprintf(out, "%s (%s)\n", post.Title, post.ID)
				fmt.Fprint(out, renderQuestions(post.Questions))
				return nil
			}

			questions := interview.FallbackQuestions()
			if asJSON {
				return writeJSON(cmd, questions)
			}
			fmt.Fprintln(out, "Generic interview")
			fmt.Fprint(out, renderQuestions(questions))
			return nil
		},
	}
	cmd.Flags().StringVar(&jobPostID, "job", "", "Show the authored questions of a job post")
	cmd.Flags().BoolVar(&listJobs, "jobs", false, "List job posts in the catalog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func renderQuestions(questions []interview.Question) string {
	rows := make([][]string, 0, len(questions))
	for i, q := range questions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			q.ID,
			string(q.Category),
			clock.FormatElapsed(q.ExpectedDuration),
			q.Text,
		})
	}
	total := clock.FormatElapsed(interview.TotalExpectedSeconds(questions))
	return renderTableWithFooter(
		[]string{"#", "ID", "Category", "Expected", "Question"},
		rows,
		[]string{"", "", "Total", total, ""},
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
