package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"imagecollect/internal/config"
	"imagecollect/internal/organizer"
	"imagecollect/internal/pipeline"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		recurse bool
		move    bool
		copyOpt bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "organize SOURCE... TARGET",
		Short: "Sort images into aspect ratio and height directories under TARGET",
		Long: "Places every image under the sources at TARGET/<ratio>/w<height>/<name>.\n" +
			"Images are copied unless --move is given. Existing files are never overwritten.",
		Args: requireArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if move && copyOpt {
				return pipeline.Wrap(pipeline.ErrValidation, "cli", "flags", "--copy and --move are mutually exclusive", nil)
			}
			switch {
			case move:
				cfg.Organize.Copy = false
			case copyOpt:
				cfg.Organize.Copy = true
			}

			sources, err := resolveSources(ctx.fs, args[:len(args)-1])
			if err != nil {
				return err
			}
			target, err := config.ExpandPath(strings.TrimSpace(args[len(args)-1]))
			if err != nil {
				return pipeline.Wrap(pipeline.ErrValidation, "cli", "resolve target", args[len(args)-1], err)
			}

			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			org := organizer.NewOrganizer(ctx.fs, cfg, logger)
			report, err := org.OrganizeImages(ctx.commandContextFor(cmd), sources, target, organizer.ImageOptions{
				Recurse: recurse,
				DryRun:  dryRun,
			})
			if report != nil {
				printOrganizeReport(cmd.OutOrStdout(), report, dryRun)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "Descend into subdirectories of directory sources")
	cmd.Flags().BoolVar(&move, "move", false, "Move images instead of copying them")
	cmd.Flags().BoolVar(&copyOpt, "copy", false, "Copy images (default unless organize.copy = false)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report planned placements without touching files")
	return cmd
}

type bucketCount struct {
	ratio  string
	height string
	count  int
}

func printOrganizeReport(out io.Writer, report *organizer.ImageReport, dryRun bool) {
	counts := make(map[[2]string]int)
	for _, p := range report.Placed {
		counts[[2]string{p.Ratio, p.Height}]++
	}
	buckets := make([]bucketCount, 0, len(counts))
	for key, n := range counts {
		buckets = append(buckets, bucketCount{ratio: key[0], height: key[1], count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].ratio != buckets[j].ratio {
			return buckets[i].ratio < buckets[j].ratio
		}
		return heightOrder(buckets[i].height) < heightOrder(buckets[j].height)
	})

	title := cases.Title(language.Und)
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []string{title.String(b.ratio), b.height, strconv.Itoa(b.count)})
	}

	verb := "Placed"
	if dryRun {
		verb = "Would place"
	}
	fmt.Fprintf(out, "%s %d images, skipped %d\n", verb, len(report.Placed), len(report.Skipped))
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Ratio", "Height", "Images"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}
	if len(report.Skipped) > 0 {
		t := reportTable{title: "Skipped", headers: []string{"Path", "Reason"}}
		for _, s := range report.Skipped {
			t.add(s.Path, s.Reason)
		}
		fmt.Fprintln(out, t.render())
	}
}

// heightOrder sorts "w<n>" directories numerically and the overflow bucket
// last.
func heightOrder(dir string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(dir, "w"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
