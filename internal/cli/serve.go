package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/officedhq/officed/internal/gateway"
	"github.com/officedhq/officed/internal/notify"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the officed gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if port != 0 {
				app.cfg.Gateway.Port = port
			}
			if bind != "" {
				app.cfg.Gateway.Bind = bind
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if irc := app.cfg.Notify.IRC; irc != nil {
				announcer := notify.New(*irc, log)
				app.office.Subscribe(announcer)
				go func() {
					if err := announcer.Start(ctx); err != nil {
						log.Warn().Err(err).Msg("irc announcer stopped")
					}
				}()
			}

			srv := gateway.New(app.cfg.Gateway, app.office, app.roster, app.threads, app.plans, app.feed, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")
	return cmd
}
