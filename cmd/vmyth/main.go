// Package main provides the vmyth command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmyth",
		Short: "Variant myth annotation engine",
		Long:  "vmyth annotates genomic variants against a GTF/GFF3 feature model and a FASTA reference, emitting one myth per variant.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
	}
	cmd.AddCommand(newAnnotateCmd())
	return cmd
}
