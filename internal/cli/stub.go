package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/waypoint/internal/stubserver"
)

func newStubCmd(opts *options) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve local fixtures for discovery, planning and sign-in",
		Long: `Stub starts a local server implementing the discovery, planning and identity
endpoints from fixtures, so waypoint can run without the hosted services.
Point services.base_url and identity.base_url at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			settings := stubserver.SettingsFromConfig(rt.cfg)
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			srv, err := stubserver.NewServer(settings, stubserver.WithLogger(rt.logger.Component("stub")))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(opts.stdout, "stub server listening on %s (ctrl+c to stop)\n", srv.BaseURL())
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: stub.port from config)")
	return cmd
}
