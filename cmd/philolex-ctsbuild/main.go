// Command philolex-ctsbuild builds the CTS URN index (C8) offline from
// the authors.csv/works.csv seed files, per spec §4.8's "build is out
// of scope for the runtime core; the core consumes a prebuilt index
// file."
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/ctsindex"
)

func main() {
	var authorsPath, worksPath, outPath string

	cmd := &cobra.Command{
		Use:   "philolex-ctsbuild",
		Short: "Build the CTS URN index from seed CSVs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if authorsPath == "" || worksPath == "" || outPath == "" {
				return fmt.Errorf("--authors, --works, and --out are all required")
			}
			return ctsindex.Build(authorsPath, worksPath, outPath)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&authorsPath, "authors", "", "path to authors.csv")
	cmd.Flags().StringVar(&worksPath, "works", "", "path to works.csv")
	cmd.Flags().StringVar(&outPath, "out", "", "output path for the built index file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
