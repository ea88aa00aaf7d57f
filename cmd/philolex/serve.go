package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/internal/httpapi"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/internal/reaper"
)

func newServeCmd() *cobra.Command {
	var port int
	var withReaper bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}
			if port == 0 {
				port = cfg.HTTPPort
			}

			a, err := buildApp(cfg)
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}
			defer closeAll(a)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if withReaper {
				go reaper.Run(ctx, 2*time.Second)
			}

			srv := httpapi.NewServer(a.engine, port)
			if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
				return &cliError{code: exitInternal, err: err}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (default: config's http_port)")
	cmd.Flags().BoolVar(&withReaper, "reap-children", true, "run the zombie-process reaper alongside the server")
	return cmd
}
