// Package cmd command line
package cmd

import (
	"github.com/Laisky/icebreaker/cmd/tui"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/icebreaker/internal/icebreaker"
	"github.com/Laisky/icebreaker/library/config"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long: `Launch an interactive Terminal User Interface (TUI) for icebreaker.

Enter a full name and an optional company, then press enter to search
the web and draft a connection message.

Example:
  icebreaker tui

Keyboard shortcuts:
  Tab         Next input field
  Enter       Generate / back to form
  Esc         Back to form
  q           Quit from the result view
  Ctrl+C      Quit`,
	Args: gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Get()
		if err != nil {
			return errors.Errorf("Configuration Error: %v", err)
		}
		svc, err := icebreaker.NewServiceFromSettings(settings)
		if err != nil {
			return errors.Errorf("Configuration Error: %v", err)
		}

		return runTUI(cmd, svc)
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI starts the interactive Terminal User Interface and returns any start/run error.
func runTUI(cmd *cobra.Command, gen tui.Generator) error {
	model := tui.NewModel(cmd.Context(), gen)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	_, err := p.Run()
	return errors.WithStack(err)
}
