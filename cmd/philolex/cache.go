package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate cache counts and byte totals by language",
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

			stats, err := a.engine.CacheStats(cmd.Context())
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the response cache, optionally scoped to one language",
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

			n, err := a.engine.CacheClear(cmd.Context(), schema.Language(language))
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				DeletedRows int64 `json:"deleted_rows"`
			}{DeletedRows: n})
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "restrict the clear to one language (lat|grc|san); default: all")
	return cmd
}
