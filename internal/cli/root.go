// Package cli 实现 sitectl：内容流水线与数据导入的命令行入口。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ewillweb/internal/logger"
	"github.com/spf13/cobra"
)

// errFailed 表示命令已完整执行但存在失败条目，详情已输出。
var errFailed = errors.New("completed with failures")

type options struct {
	root    string
	logMode string
	log     *logger.Logger
}

// newRootCommand 每次创建一棵独立的命令树，测试之间不共享状态。
func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "sitectl",
		Short: "Content pipeline and data tooling for the corporate site",
		Long: `sitectl normalizes page assets, builds page JSON and manifests,
syncs index.md into index.yml, audits raw asset references and seeds the database.

Examples:
   sitectl build --target astro   # normalize + content
   sitectl sync --check           # CI gate: fail when any page needs sync
   sitectl audit                  # report raw assets/ references
   sitectl seed-events --file events.yml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(opts.logMode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.root, "root", ".", "Repository root containing pages/")
	cmd.PersistentFlags().StringVar(&opts.logMode, "log-mode", "development", "Log format (development|production)")

	cmd.AddCommand(
		newBuildCommand(opts),
		newNormalizeCommand(opts),
		newContentCommand(opts),
		newSyncCommand(opts),
		newAuditCommand(opts),
		newSeedCommand(opts),
		newSeedEventsCommand(opts),
	)
	return cmd
}

// Execute 运行命令并返回进程退出码：成功 0，校验或同步失败 1。
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errFailed) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return 1
}

// Main 是 cmd/sitectl 的入口。
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
