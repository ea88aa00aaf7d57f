package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report the reachability of every wired component",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}

			a, err := buildApp(cfg)
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}
			defer closeAll(a)

			components := a.engine.Health(cmd.Context())

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Components any `json:"components"`
			}{Components: components})
		},
	}
}
