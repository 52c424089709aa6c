package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-privateplot/internal/commands"
	"github.com/goliatone/go-privateplot/internal/commands/articlecmd"
	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/publish"
	"github.com/goliatone/go-privateplot/internal/terminal"
)

type publishFlags struct {
	concurrency   int
	assumeYes     bool
	includeDrafts bool
	exclude       []string
}

func newPublishCommand(a *app) *cobra.Command {
	flags := &publishFlags{}
	cmd := &cobra.Command{
		Use:   "publish [path]",
		Short: "Publish a markdown file or every markdown file under a directory",
		Long: `Publish creates or updates articles on the configured instance.

Files that were published before are updated in place, drafts are skipped
unless --include-drafts is set and unchanged files are not sent again.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("concurrency") && flags.concurrency <= 0 {
				return invalidInputf("concurrency must be a positive integer, got %d", flags.concurrency)
			}
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runPublish(cmd, a, a.resolve(path), flags)
		},
	}
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "c", publish.DefaultConcurrency, "number of files published at once")
	cmd.Flags().BoolVarP(&flags.assumeYes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.includeDrafts, "include-drafts", false, "publish files marked as draft")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "glob of files to skip, relative to the target directory (repeatable)")
	return cmd
}

func runPublish(cmd *cobra.Command, a *app, path string, flags *publishFlags) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	engine := publish.NewEngine(client, publish.WithLogger(logging.PublishLogger(a.provider)))
	batch := publish.NewBatch(engine,
		publish.WithPrompter(a.prompter()),
		publish.WithReporter(terminal.NewReporter(a.printer)),
		publish.WithBatchLogger(logging.PublishLogger(a.provider)),
	)
	handler := articlecmd.NewPublishHandler(batch, commands.CommandLogger(a.provider, "articles"), nil)
	return handler.Execute(cmd.Context(), articlecmd.PublishCommand{
		Path:          path,
		Concurrency:   flags.concurrency,
		AssumeYes:     flags.assumeYes,
		IncludeDrafts: flags.includeDrafts,
		Exclude:       flags.exclude,
	})
}

func newDeleteCommand(a *app) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Delete the remote article published from a markdown file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			handler := articlecmd.NewDeleteHandler(client, a.prompter(), a.printer, commands.CommandLogger(a.provider, "articles"))
			return handler.Execute(cmd.Context(), articlecmd.DeleteArticleCommand{
				Path:      a.resolve(args[0]),
				AssumeYes: assumeYes,
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the articles on the configured instance",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			handler := articlecmd.NewListHandler(client, a.printer, commands.CommandLogger(a.provider, "articles"))
			return handler.Execute(cmd.Context(), articlecmd.ListArticlesCommand{})
		},
	}
}
