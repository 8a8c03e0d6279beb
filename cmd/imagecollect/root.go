package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagecollect/internal/pipeline"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "imagecollect",
		Short:         "Find perceptual duplicates and organize image collections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return pipeline.Wrap(pipeline.ErrValidation, "cli", "parse flags", cmd.CommandPath(), err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.cacheDirFlag, "cache-dir", "", "Fingerprint cache directory (overrides paths.cache_dir)")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newFilterCommand(ctx))
	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// requireArgs rejects invocations with fewer than n positional arguments as
// usage errors.
func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return pipeline.Wrap(pipeline.ErrValidation, "cli", "arguments", fmt.Sprintf("%s requires at least %d argument(s)", cmd.CommandPath(), n), nil)
		}
		return nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
