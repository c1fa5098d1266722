package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
	"mockinterview/internal/schedule"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List narration voices and show which one would be used",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			synth := narration.NewSynthesizer(cfg, schedule.NewReal())
			voices, err := synth.Voices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list voices: %w", err)
			}
			selected := narration.ResolveVoice(cmd.Context(), cfg, synth, logging.NewNop())
			if asJSON {
				return writeJSON(cmd, map[string]any{"voices": voices, "selected": selected})
			}

			out := cmd.OutOrStdout()
			if len(voices) == 0 {
				fmt.Fprintf(out, "The %s synthesizer reports no voices\n", cfg.Narration.Backend)
			} else {
				rows := make([][]string, 0, len(voices))
				for _, v := range voices {
					mark := ""
					if selected.ID != "" && v.ID == selected.ID {
						mark = "*"
					}
					rows = append(rows, []string{mark, v.ID, v.Name, dash(v.Locale)})
				}
				fmt.Fprint(out, renderTable([]string{"", "ID", "Name", "Locale"}, rows, nil))
			}
			if selected.ID == "" {
				fmt.Fprintln(out, "Selected: platform default")
			} else {
				fmt.Fprintf(out, "Selected: %s\n", selected.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
