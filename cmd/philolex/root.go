// Command philolex is the CLI front end for the dictionary-lookup
// engine: it loads configuration, wires the engine's adapters and
// storage layers, and exposes query/health/cache/serve subcommands
// (spec §6), grounded on the teacher's cobra root-command shape.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/adapters"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/cache"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/config"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/ctsindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/engine"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/factindex"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/internal/httpapi"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/internal/reaper"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/normalize"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/parse"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// Exit codes, per spec §6.
const (
	exitOK              = 0
	exitUserError       = 1
	exitTransientFail   = 2
	exitInternal        = 3
)

var cfgFile string

// NewRootCmd builds the cobra command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "philolex",
		Short:         "Reference dictionary lookup for Latin, Greek, and Sanskrit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./philolex.yaml)")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newHealthCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newServeCmd())

	return root
}

func main() {
	setupLogging()
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cache.Logger = logger
	ctsindex.Logger = logger
	factindex.Logger = logger
	adapters.Logger = logger
	normalize.Logger = logger
	parse.Logger = logger
	engine.Logger = logger
	httpapi.Logger = logger
	reaper.Logger = logger
}

// exitCodeFor maps an error returned from Execute to spec §6's exit
// code table. Cobra commands that want a specific code set it via
// cliError; anything else is an internal error.
func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	switch err.(type) {
	case *schema.NormalizationError, *schema.QueryError:
		return exitUserError
	default:
		return exitInternal
	}
}

// cliError lets a command force a specific process exit code without
// smuggling engine-internal error types through cobra's RunE.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func closeAll(a *app) {
	if a != nil {
		a.Close()
	}
}
