package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imagecollect/internal/dedup"
	"imagecollect/internal/logging"
	"imagecollect/internal/organizer"
	"imagecollect/internal/pipeline"
)

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var (
		recurse bool
		verify  bool
		dryRun  bool
		dupDir  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "filter SOURCE...",
		Short: "Find perceptual duplicates and move them into a duplicates directory",
		Long: "Fingerprints every image under the given files and directories with a coarse\n" +
			"average hash, confirms the candidates with a perceptual hash, and moves all\n" +
			"but one member of each duplicate group aside.",
		Args: requireArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sources, err := resolveSources(ctx.fs, args)
			if err != nil {
				return err
			}
			if dupDir != "" {
				if dupDir, err = resolveDirectory(ctx.fs, "--dup-dir", dupDir); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("verify") {
				cfg.Dedup.Verify = verify
			}
			if cmd.Flags().Changed("workers") {
				if workers < 0 {
					return pipeline.Wrap(pipeline.ErrValidation, "cli", "--workers", "must be >= 0", nil)
				}
				cfg.Dedup.Workers = workers
			}

			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			runCtx := ctx.commandContextFor(cmd)

			cache, err := ctx.openCache(runCtx, cmd)
			if err != nil {
				return err
			}
			defer cache.Close()

			progress := newPassProgress(cmd.ErrOrStderr())
			finder, err := dedup.NewFinderFromConfig(ctx.fs, cfg, cache, dedup.Options{
				Logger:   logger,
				Progress: progress.update,
			})
			if err != nil {
				return err
			}

			result, err := finder.Search(runCtx, sources, recurse, cfg.Dedup.Verify)
			progress.finish()
			if err != nil {
				return err
			}

			counters := cache.Counters()
			logger.Info(fmt.Sprintf("found %d groups", len(result.Groups)),
				logging.Int("images", result.Images),
				logging.Int("candidates", len(result.Candidates)),
				logging.Int64("cache_hits", counters.Hits),
				logging.Int64("computed", counters.Computed),
				logging.Duration("elapsed", result.Elapsed),
			)

			out := cmd.OutOrStdout()
			printFilterSummary(out, result, counters.Hits, counters.Computed)
			if len(result.Groups) == 0 {
				return nil
			}
			printGroups(out, result.Groups)

			org := organizer.NewOrganizer(ctx.fs, cfg, logger)
			ops, err := org.OrganizeDuplicates(runCtx, result.Groups, dupDir, dryRun)
			printMoves(out, ops, dryRun)
			return err
		},
	}

	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "Descend into subdirectories of directory sources")
	cmd.Flags().StringVarP(&dupDir, "dup-dir", "d", "", "Existing directory receiving duplicates (default: <subject dir>/<dup_dir_name>)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Recompute cached fingerprints of files whose content changed")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent fingerprint workers (0 uses all CPUs; default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report duplicates and planned moves without moving anything")
	return cmd
}

func printFilterSummary(out io.Writer, result *dedup.Result, hits, computed int64) {
	fmt.Fprintf(out, "Scanned %s images in %s\n",
		humanize.Comma(int64(result.Images)),
		result.Elapsed.Round(time.Millisecond),
	)
	fmt.Fprintf(out, "Coarse candidates: %s in %s groups\n",
		humanize.Comma(int64(len(result.Candidates))),
		humanize.Comma(int64(len(result.CoarseGroups))),
	)
	fmt.Fprintf(out, "Fingerprints: %s cached, %s computed\n", humanize.Comma(hits), humanize.Comma(computed))
	fmt.Fprintf(out, "Duplicate groups: %s\n", humanize.Comma(int64(len(result.Groups))))
}

func printGroups(out io.Writer, groups []dedup.Group) {
	t := reportTable{
		headers:      []string{"Group", "Images", "Paths"},
		aligns:       []columnAlignment{alignRight, alignRight, alignLeft},
		separateRows: true,
	}
	for i, g := range groups {
		t.add(strconv.Itoa(i+1), strconv.Itoa(len(g)), strings.Join(g, "\n"))
	}
	fmt.Fprintln(out, t.render())
}

func printMoves(out io.Writer, ops []organizer.Operation, dryRun bool) {
	if len(ops) == 0 {
		return
	}
	title := "Moved duplicates"
	if dryRun {
		title = "Planned moves (dry run)"
	}
	t := reportTable{title: title, headers: []string{"Source", "Target"}}
	for _, op := range ops {
		t.add(op.Source, op.Target)
	}
	fmt.Fprintln(out, t.render())
}
