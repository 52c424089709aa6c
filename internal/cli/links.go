package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-privateplot/internal/commands"
	"github.com/goliatone/go-privateplot/internal/commands/linkcmd"
)

type linkFlags struct {
	name        string
	url         string
	description string
	avatar      string
	status      string
}

func (f *linkFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.url, "url", "", "site URL")
	cmd.Flags().StringVar(&f.description, "description", "", "short description")
	cmd.Flags().StringVar(&f.avatar, "avatar", "", "avatar image URL")
	cmd.Flags().StringVar(&f.status, "status", "", "active or inactive")
}

func newLinksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage friend links",
	}
	cmd.AddCommand(
		newLinksListCommand(a),
		newLinksAddCommand(a),
		newLinksUpdateCommand(a),
		newLinksRemoveCommand(a),
	)
	return cmd
}

func (a *app) linkHandlers() (*linkcmd.Handlers, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return linkcmd.NewHandlers(client, a.prompter(), a.printer, commands.CommandLogger(a.provider, "links")), nil
}

func newLinksListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List friend links",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			handlers, err := a.linkHandlers()
			if err != nil {
				return err
			}
			return handlers.List.Execute(cmd.Context(), linkcmd.ListLinksCommand{})
		},
	}
}

func newLinksAddCommand(a *app) *cobra.Command {
	flags := &linkFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a friend link",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg := linkcmd.AddLinkCommand{
				Name:        flags.name,
				URL:         flags.url,
				Description: flags.description,
				Avatar:      flags.avatar,
				Status:      flags.status,
			}
			if err := msg.Validate(); err != nil {
				return invalidInput(err)
			}
			handlers, err := a.linkHandlers()
			if err != nil {
				return err
			}
			return handlers.Add.Execute(cmd.Context(), msg)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLinksUpdateCommand(a *app) *cobra.Command {
	flags := &linkFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a friend link",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := func(name string, value *string) *string {
				if cmd.Flags().Changed(name) {
					return value
				}
				return nil
			}
			msg := linkcmd.UpdateLinkCommand{
				ID:          args[0],
				Name:        changed("name", &flags.name),
				URL:         changed("url", &flags.url),
				Description: changed("description", &flags.description),
				Avatar:      changed("avatar", &flags.avatar),
				Status:      changed("status", &flags.status),
			}
			if err := msg.Validate(); err != nil {
				return invalidInput(err)
			}
			handlers, err := a.linkHandlers()
			if err != nil {
				return err
			}
			return handlers.Update.Execute(cmd.Context(), msg)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newLinksRemoveCommand(a *app) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a friend link",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handlers, err := a.linkHandlers()
			if err != nil {
				return err
			}
			return handlers.Remove.Execute(cmd.Context(), linkcmd.RemoveLinkCommand{ID: args[0], AssumeYes: assumeYes})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
