// Package cli wires the waypoint commands.
package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/config"
	"github.com/kingrea/waypoint/internal/tui"
)

var version = "dev"

// SetVersion overrides the version reported by `waypoint version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// options hold the global flags shared by every command.
type options struct {
	projectDir string
	email      string
	password   string
	signUp     bool
	jsonOutput bool
	stdout     io.Writer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{stdout: os.Stdout}
	root := &cobra.Command{
		Use:     "waypoint",
		Version: version,
		Short:   "Plan a one-day trip from the terminal",
		Long: `waypoint finds points of interest near a location, lets you pick the ones
you want to see, and asks the planning service for an optimized itinerary.

Run without a command to open the interactive planner.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.stdout = cmd.OutOrStdout()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.projectDir, "dir", "", "Project directory holding .waypoint (default: current directory)")
	flags.StringVar(&opts.email, "email", "", "Account email (default: $WAYPOINT_EMAIL)")
	flags.StringVar(&opts.password, "password", "", "Account password (default: $WAYPOINT_PASSWORD)")
	flags.BoolVar(&opts.signUp, "sign-up", false, "Create the account instead of signing in")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newSearchCmd(opts),
		newPlanCmd(opts),
		newStubCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the waypoint version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func runInteractive(cmd *cobra.Command, opts *options) error {
	rt, err := opts.open()
	if err != nil {
		return err
	}
	defer rt.Close()

	// credentials from flags or the environment skip the sign-in screen
	if opts.credentialsGiven() {
		if err := rt.signIn(cmd.Context(), opts); err != nil {
			return err
		}
	}
	app, err := tui.NewApp(tui.Deps{
		Config:   rt.cfg,
		Identity: rt.identity,
		Session:  rt.session,
		Logger:   rt.logger,
	}, tui.WithContext(cmd.Context()))
	if err != nil {
		return err
	}
	rt.logger.Info().Str("project", rt.cfg.ProjectDir).Str("dir", config.Dir).Msg("starting interactive planner")
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
