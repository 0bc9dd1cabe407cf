package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cfnfmt/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the formatting cache",
	Long:  "Remove every entry written by --cache under $XDG_CACHE_HOME/cfnfmt.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	cache, err := driver.OpenCache("cfnfmt")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	return cleanCache(cmd.OutOrStdout(), cache, quiet)
}

func cleanCache(out io.Writer, cache *driver.Cache, quiet bool) error {
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cache.Dir(), err)
	}
	if !quiet {
		fmt.Fprintf(out, "removed %s\n", cache.Dir())
	}
	return nil
}
