package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

func newQueryCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "query <lang> <term>",
		Short: "Look up a term in one of the three supported languages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := schema.Language(args[0])
			term := args[1]

			cfg, err := loadConfig()
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}

			a, err := buildApp(cfg)
			if err != nil {
				return &cliError{code: exitInternal, err: err}
			}
			defer closeAll(a)

			result, err := a.engine.Query(cmd.Context(), lang, term, refresh)
			if err != nil {
				return &cliError{code: exitUserError, err: err}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return &cliError{code: exitInternal, err: err}
			}

			if len(result.Entries) == 0 && len(result.Errors) > 0 {
				fmt.Fprintln(os.Stderr, "philolex: all backends failed for this query")
				return &cliError{code: exitTransientFail, err: fmt.Errorf("no backend returned a usable result")}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and fact index, forcing a live fan-out")
	return cmd
}
