package cli

import (
	"fmt"

	"github.com/ewillweb/internal/content"
	"github.com/spf13/cobra"
)

func newSyncCommand(opts *options) *cobra.Command {
	var (
		page  string
		check bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync index.md into index.yml layout.sections (one-way, skips manual layouts)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer := content.NewSyncer(opts.root, opts.log, check)
			pages, err := syncer.ResolvePages(page)
			if err != nil {
				return err
			}
			summary, err := syncer.Run(cmd.Context(), pages)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				line := fmt.Sprintf("%-10s %s", r.Status, r.Page)
				if r.Reason != "" {
					line += " (" + r.Reason + ")"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "synced=%d skipped=%d needs_sync=%d errors=%d\n",
				summary.Synced, summary.Skipped, summary.NeedsSync, summary.Errors)
			if summary.Failed(check) {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "Only sync the given page slug")
	cmd.Flags().BoolVar(&check, "check", false, "Report pages needing sync without writing (exit 1 if any)")
	return cmd
}

func newAuditCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report raw assets/ references in index.md files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := content.Audit(opts.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range result.Violations {
				fmt.Fprintln(out, v.String())
			}
			fmt.Fprintf(out, "checked %d files, %d violations\n", result.FilesChecked, len(result.Violations))
			if !result.Passed() {
				return errFailed
			}
			return nil
		},
	}
}
