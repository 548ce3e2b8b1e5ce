package cli

import (
	"fmt"
	"io"

	"github.com/ewillweb/internal/content"
	"github.com/spf13/cobra"
)

func addTargetFlags(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "target", "", "Output target (next|nuxt|astro|static), auto-detected when empty")
	cmd.Flags().StringVar(target, "framework", "", "Alias of --target")
}

func (o *options) buildConfig(rawTarget string) (content.BuildConfig, error) {
	target, err := content.ParseTarget(rawTarget)
	if err != nil {
		return content.BuildConfig{}, err
	}
	return content.NewBuildConfig(o.root, target), nil
}

func newBuildCommand(opts *options) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Normalize assets, then build page JSON and the content manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.buildConfig(target)
			if err != nil {
				return err
			}
			failed, err := runNormalize(cmd, opts, cfg)
			if err != nil {
				return err
			}
			buildFailed, err := runContent(cmd, opts, cfg)
			if err != nil {
				return err
			}
			if failed || buildFailed {
				return errFailed
			}
			return nil
		},
	}
	addTargetFlags(cmd, &target)
	return cmd
}

func newNormalizeCommand(opts *options) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rename page assets to lowercase hashed names and write asset-manifest.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.buildConfig(target)
			if err != nil {
				return err
			}
			failed, err := runNormalize(cmd, opts, cfg)
			if err != nil {
				return err
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	addTargetFlags(cmd, &target)
	return cmd
}

func newContentCommand(opts *options) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Build page JSON from index.yml/index.md (requires normalize)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.buildConfig(target)
			if err != nil {
				return err
			}
			failed, err := runContent(cmd, opts, cfg)
			if err != nil {
				return err
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	addTargetFlags(cmd, &target)
	return cmd
}

func runNormalize(cmd *cobra.Command, opts *options, cfg content.BuildConfig) (bool, error) {
	manifest, report, err := content.NewNormalizer(cfg, opts.log).Run(cmd.Context())
	if err != nil {
		return false, err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "assets: %d normalized -> %s\n", len(manifest.Assets), cfg.AssetManifestPath())
	printReport(out, report)
	return report.HasErrors(), nil
}

func runContent(cmd *cobra.Command, opts *options, cfg content.BuildConfig) (bool, error) {
	builder, err := content.NewBuilder(cfg, opts.log)
	if err != nil {
		return false, err
	}
	manifest, report, err := builder.Run(cmd.Context())
	if err != nil {
		return false, err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pages: %d built -> %s\n", len(manifest.Pages), cfg.ContentManifestPath())
	printReport(out, report)
	return report.HasErrors(), nil
}

func printReport(out io.Writer, report *content.Report) {
	if report == nil {
		return
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "  warning %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  error   %s\n", e)
	}
}
