package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mockinterview/internal/capture"
	"mockinterview/internal/catalog"
	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/schedule"
	"mockinterview/internal/scoring"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
)

// simulationStepLimit bounds how many simulated seconds a single phase may
// take before the run is abandoned.
const simulationStepLimit = 3600

type simulateOptions struct {
	UserID        string
	CandidateName string
	Role          string
	JobPostID     string
	ApplicationID string
	AnswerSeconds int
	Notes         string
	Skip          []int
}

func (o simulateOptions) skips(index int) bool {
	for _, s := range o.Skip {
		if s-1 == index {
			return true
		}
	}
	return false
}

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var opts simulateOptions
	var asJSON bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a complete interview headlessly and print the evaluation",
		Long: "Runs one interview against a simulated clock with timed narration and no\n" +
			"capture devices, answering every question, then scores it with the\n" +
			"configured scorer. Nothing is written to the session database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := logging.NewNop()
			if verbose {
				logger, err = logging.New(logging.Options{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
				if err != nil {
					return err
				}
			}
			session, err := runSimulation(cmd.Context(), cfg, opts, logger)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, session)
			}
			renderSession(cmd.OutOrStdout(), session, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.UserID, "user", "simulated-candidate", "Candidate id")
	cmd.Flags().StringVar(&opts.CandidateName, "name", "", "Candidate name used in narration")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Role for a generic interview")
	cmd.Flags().StringVar(&opts.JobPostID, "job", "", "Job post id for a tailored interview")
	cmd.Flags().StringVar(&opts.ApplicationID, "application", "", "Application id for a tailored interview")
	cmd.Flags().IntVar(&opts.AnswerSeconds, "answer-seconds", 45, "Simulated length of each answer")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Notes attached to every answer")
	cmd.Flags().IntSliceVar(&opts.Skip, "skip", nil, "1-based question numbers to leave unanswered")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the finished session as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log orchestrator activity to stderr")
	return cmd
}

// runSimulation drives a full interview through the session registry on a
// manual scheduler, so pacing delays cost no wall-clock time.
func runSimulation(ctx context.Context, cfg *config.Config, opts simulateOptions, logger *slog.Logger) (*interview.Session, error) {
	if opts.AnswerSeconds < 0 {
		return nil, fmt.Errorf("answer-seconds must not be negative")
	}
	sched := schedule.NewManual(time.Now().UTC())
	store := sessionstore.NewMemory()

	var jobs catalog.Catalog
	tailored := strings.TrimSpace(opts.JobPostID) != "" || strings.TrimSpace(opts.ApplicationID) != ""
	if tailored {
		var err error
		if jobs, err = catalog.New(cfg); err != nil {
			return nil, fmt.Errorf("load job catalog: %w", err)
		}
	}

	registry, err := sessions.New(sessions.Options{
		Config:      cfg,
		Store:       store,
		Catalog:     jobs,
		Scorer:      scoring.NewScorer(cfg, logger),
		Synthesizer: narration.NewTimedSynthesizer(sched, cfg.Narration.WordsPerMinute),
		Source:      capture.NoneSource{},
		Scheduler:   sched,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = registry.CloseAll(closeCtx)
	}()

	var (
		orch    *orchestrator.Orchestrator
		started *interview.Session
	)
	if tailored {
		orch, started, err = registry.StartForJob(ctx, opts.UserID, opts.JobPostID, opts.ApplicationID)
	} else {
		orch, started, err = registry.Start(ctx, sessions.StartRequest{
			UserID:        opts.UserID,
			CandidateName: opts.CandidateName,
			Role:          opts.Role,
		})
	}
	if err != nil {
		return nil, err
	}

	last := len(started.Questions) - 1
	for i := range started.Questions {
		if err := awaitPhase(orch, sched, orchestrator.PhaseAwaitingResponse, i); err != nil {
			return nil, err
		}
		if !opts.skips(i) {
			if err := answer(ctx, orch, sched, opts); err != nil {
				return nil, fmt.Errorf("answer question %d: %w", i+1, err)
			}
		}
		if i < last {
			err = orch.Next(ctx)
		} else {
			err = orch.Complete(ctx)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := awaitDone(orch, sched); err != nil {
		return nil, err
	}
	return store.Get(ctx, started.ID)
}

func answer(ctx context.Context, orch *orchestrator.Orchestrator, sched *schedule.Manual, opts simulateOptions) error {
	if err := orch.ToggleRecording(ctx); err != nil {
		return err
	}
	if orch.Snapshot().Phase != orchestrator.PhaseRecording {
		return errors.New("recording did not start")
	}
	for s := 0; s < opts.AnswerSeconds; s++ {
		sched.Advance(time.Second)
	}
	if opts.Notes != "" {
		if err := orch.SetNotes(ctx, opts.Notes); err != nil {
			return err
		}
	}
	return orch.ToggleRecording(ctx)
}

// awaitPhase steps the simulated clock until the session reaches phase at
// index.
func awaitPhase(orch *orchestrator.Orchestrator, sched *schedule.Manual, phase orchestrator.Phase, index int) error {
	for step := 0; step < simulationStepLimit; step++ {
		snap := orch.Snapshot()
		if snap.Phase == phase && snap.Index == index {
			return nil
		}
		if snap.Terminal() {
			return fmt.Errorf("session ended early in %s", snap.State)
		}
		sched.Advance(time.Second)
	}
	return fmt.Errorf("session never reached %s at question %d", phase, index+1)
}

func awaitDone(orch *orchestrator.Orchestrator, sched *schedule.Manual) error {
	for step := 0; step < simulationStepLimit; step++ {
		select {
		case <-orch.Done():
			return nil
		default:
		}
		sched.Advance(time.Second)
	}
	return errors.New("session did not finish after completion")
}
