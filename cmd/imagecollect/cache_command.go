package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the fingerprint cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheDirCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached fingerprints per algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.commandContextFor(cmd)
			cache, err := ctx.openCache(runCtx, cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.Stats(runCtx)
			if err != nil {
				return err
			}
			size, err := cache.SizeBytes()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache dir: %s\n", cache.Dir())
			fmt.Fprintf(out, "Size:      %s\n", humanize.IBytes(uint64(size)))
			if len(stats) == 0 {
				fmt.Fprintln(out, "Cached fingerprints: none")
				return nil
			}
			rows := make([][]string, 0, len(stats))
			var total int
			for _, s := range stats {
				total += s.Entries
				rows = append(rows, []string{
					s.Algorithm,
					s.Params,
					humanize.Comma(int64(s.Entries)),
					humanize.Comma(int64(s.Verified)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Algorithm", "Params", "Entries", "With digest"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Total entries: %s\n", humanize.Comma(int64(total)))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx := ctx.commandContextFor(cmd)
			cache, err := ctx.openCache(runCtx, cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			removed, err := cache.Evict(runCtx, strings.TrimSpace(algorithm))
			if err != nil {
				return err
			}
			scope := "all algorithms"
			if algorithm != "" {
				scope = strconv.Quote(algorithm)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached fingerprints (%s)\n", humanize.Comma(removed), scope)
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Only remove entries of this algorithm (ahash, phash)")
	return cmd
}

func newCacheDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Print the fingerprint cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.CacheDir)
			return nil
		},
	}
}
