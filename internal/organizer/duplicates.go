package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"imagecollect/internal/dedup"
	"imagecollect/internal/fileutil"
	"imagecollect/internal/logging"
	"imagecollect/internal/pipeline"
)

const stageDuplicates = "organize-duplicates"

// OrganizeDuplicates moves the redundant members of each group into a
// duplicates directory and returns the moves, in execution order.
//
// Within a group the member whose lower-cased path sorts last stays where it
// is; it is the subject. Every other member, at 1-based position i of the
// descending order, becomes <subject stem>_dup_<i><subject ext> inside dupDir,
// or inside <subject dir>/<dup_dir_name> when dupDir is empty. A taken name
// gets a _<n> suffix before the extension. With dryRun the moves are only
// planned.
func (o *Organizer) OrganizeDuplicates(ctx context.Context, groups []dedup.Group, dupDir string, dryRun bool) ([]Operation, error) {
	if dupDir != "" {
		if err := o.requireDirectory(stageDuplicates, dupDir); err != nil {
			return nil, err
		}
	}
	logger := logging.WithContext(pipeline.WithStage(ctx, stageDuplicates), o.logger)

	reserved := reservations{}
	var done []Operation
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if len(group) < 2 {
			continue
		}
		members := append([]string(nil), group...)
		sort.SliceStable(members, func(i, j int) bool {
			return strings.ToLower(members[i]) > strings.ToLower(members[j])
		})
		subject := members[0]
		stem, ext := splitName(subject)

		dir := dupDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(subject), o.cfg.Dedup.DupDirName)
		}
		if err := o.prepareTarget(stageDuplicates, dir, dryRun); err != nil {
			return done, err
		}

		for i, member := range members[1:] {
			target, err := reserved.uniqueTarget(o.fs, dir, fmt.Sprintf("%s_dup_%d", stem, i+1), ext)
			if err != nil {
				return done, pipeline.Wrap(pipeline.ErrFilesystem, stageDuplicates, "plan move", member, err)
			}
			op := Operation{Source: member, Target: target, Action: ActionMove}
			if !dryRun {
				if err := fileutil.MoveFile(o.fs, member, target); err != nil {
					return done, pipeline.Wrap(pipeline.ErrFilesystem, stageDuplicates, "move duplicate", member, err)
				}
				logger.Warn("moved duplicate",
					logging.String("source", member),
					logging.String("target", target),
					logging.String("subject", subject),
					logging.String(logging.FieldEventType, "duplicate_moved"),
				)
			} else {
				logger.Info("would move duplicate",
					logging.String("source", member),
					logging.String("target", target),
					logging.String("subject", subject),
				)
			}
			done = append(done, op)
		}
	}
	return done, nil
}
