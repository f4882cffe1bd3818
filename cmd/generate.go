package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/spf13/cobra"

	"github.com/Laisky/icebreaker/internal/icebreaker"
	"github.com/Laisky/icebreaker/library/config"
)

var bannerLine = strings.Repeat("=", 50)

var generateCMD = &cobra.Command{
	Use:   "generate",
	Short: "Generate one icebreaker",
	Long: `Search the web for a person's profile and print one icebreaker.

Missing --name / --company flags are prompted on stdin.

Example:
  icebreaker generate --name "Jensen Huang" --company NVIDIA`,
	Args: gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		company, _ := cmd.Flags().GetString("company")

		return runGenerate(cmd.Context(), generateIO{
			in:         cmd.InOrStdin(),
			out:        cmd.OutOrStdout(),
			name:       name,
			company:    company,
			askName:    !cmd.Flags().Changed("name"),
			askCompany: !cmd.Flags().Changed("company"),
		}, newServiceFromSharedSettings)
	},
}

func init() {
	generateCMD.Flags().String("name", "", "target full name, prompted when absent")
	generateCMD.Flags().String("company", "", "target company, prompted when absent")
	rootCMD.AddCommand(generateCMD)
}

// textGenerator is the part of icebreaker.Service the CLI uses.
type textGenerator interface {
	Generate(ctx context.Context, name, company string) (string, error)
}

type serviceFactory func() (textGenerator, error)

type generateIO struct {
	in                  io.Reader
	out                 io.Writer
	name, company       string
	askName, askCompany bool
}

func newServiceFromSharedSettings() (textGenerator, error) {
	settings, err := config.Get()
	if err != nil {
		return nil, err
	}

	svc, err := icebreaker.NewServiceFromSettings(settings)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// runGenerate resolves configuration first, so a missing secret aborts
// before the user is prompted.
func runGenerate(ctx context.Context, gio generateIO, newService serviceFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := newService()
	if err != nil {
		return errors.Errorf("Configuration Error: %v", err)
	}

	fmt.Fprintln(gio.out, "--- LinkedIn Icebreaker Agent (Web Search Mode) ---")

	reader := bufio.NewReader(gio.in)
	name, company := gio.name, gio.company
	if gio.askName {
		if name, err = prompt(reader, gio.out, "Target Name (e.g., Jensen Huang): "); err != nil {
			return errors.Wrap(err, "read name")
		}
	}
	if gio.askCompany {
		if company, err = prompt(reader, gio.out, "Target Company (optional): "); err != nil {
			return errors.Wrap(err, "read company")
		}
	}
	name = strings.TrimSpace(name)
	company = strings.TrimSpace(company)

	if name == "" {
		fmt.Fprintln(gio.out, "Error: Name is required.")
		return nil
	}

	message, err := svc.Generate(ctx, name, company)
	if err != nil {
		fmt.Fprintf(gio.out, "Application Error: %v\n", err)
		return nil
	}

	fmt.Fprintf(gio.out, "\n%s\nGenerated Icebreaker:\n%s\n%s\n%s\n\n",
		bannerLine, bannerLine, message, bannerLine)
	return nil
}

// prompt reads one line. EOF after a partial line is not an error.
func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
