package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kmbfeed/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the downloaded feed cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached feed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Cache.Enabled {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
				return err
			}
			c, err := cache.Open(cmd.Context(), cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer c.Close()

			if err := c.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s cache.\n", cfg.Cache.Backend)
			return err
		},
	})
	return cmd
}
