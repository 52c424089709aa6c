package linkcmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-privateplot/internal/commands"
	"github.com/goliatone/go-privateplot/internal/publish"
	"github.com/goliatone/go-privateplot/internal/remote"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// Client is the friend-link subset of the remote API.
type Client interface {
	ListFriendLinks(ctx context.Context) ([]remote.FriendLink, error)
	GetFriendLink(ctx context.Context, id string) (*remote.FriendLink, error)
	CreateFriendLink(ctx context.Context, in remote.FriendLinkInput) (*remote.FriendLink, error)
	UpdateFriendLink(ctx context.Context, id string, in remote.FriendLinkInput) (*remote.FriendLink, error)
	DeleteFriendLink(ctx context.Context, id string) error
}

var _ Client = (*remote.Client)(nil)

// Output is the operator-facing sink used by the handlers.
type Output interface {
	Info(message string)
	Success(message string)
	Table(headers []string, rows [][]string)
}

// Handlers groups the friend-link command handlers.
type Handlers struct {
	List   *commands.Handler[ListLinksCommand]
	Add    *commands.Handler[AddLinkCommand]
	Update *commands.Handler[UpdateLinkCommand]
	Remove *commands.Handler[RemoveLinkCommand]
}

// NewHandlers wires every friend-link handler against client.
func NewHandlers(client Client, prompter publish.Prompter, out Output, logger interfaces.Logger) *Handlers {
	list := func(ctx context.Context, _ ListLinksCommand) error {
		links, err := client.ListFriendLinks(ctx)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			out.Info("No friend links found")
			return nil
		}
		rows := make([][]string, 0, len(links))
		for _, link := range links {
			rows = append(rows, []string{link.ID, link.Name, link.URL, link.Status})
		}
		out.Table([]string{"ID", "Name", "URL", "Status"}, rows)
		out.Info("Total friend links: " + strconv.Itoa(len(links)))
		return nil
	}

	add := func(ctx context.Context, msg AddLinkCommand) error {
		status := msg.Status
		if status == "" {
			status = StatusActive
		}
		in := remote.FriendLinkInput{
			Name:   &msg.Name,
			URL:    &msg.URL,
			Status: &status,
		}
		if msg.Description != "" {
			in.Description = &msg.Description
		}
		if msg.Avatar != "" {
			in.Avatar = &msg.Avatar
		}
		link, err := client.CreateFriendLink(ctx, in)
		if err != nil {
			return err
		}
		out.Success(fmt.Sprintf("Friend link added successfully (%s)", link.ID))
		return nil
	}

	update := func(ctx context.Context, msg UpdateLinkCommand) error {
		in := remote.FriendLinkInput{
			Name:        msg.Name,
			URL:         msg.URL,
			Description: msg.Description,
			Avatar:      msg.Avatar,
			Status:      msg.Status,
		}
		if _, err := client.UpdateFriendLink(ctx, msg.ID, in); err != nil {
			return err
		}
		out.Success("Friend link modified successfully")
		return nil
	}

	remove := func(ctx context.Context, msg RemoveLinkCommand) error {
		link, err := client.GetFriendLink(ctx, msg.ID)
		if err != nil {
			return err
		}
		if !msg.AssumeYes {
			ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete friend link %q (%s)?", link.Name, link.URL))
			if err != nil {
				return err
			}
			if !ok {
				out.Info("Delete operation cancelled")
				return nil
			}
		}
		if err := client.DeleteFriendLink(ctx, msg.ID); err != nil {
			return err
		}
		out.Success("Friend link deleted successfully")
		return nil
	}

	return &Handlers{
		List: commands.NewHandler[ListLinksCommand](list,
			commands.WithLogger[ListLinksCommand](logger),
			commands.WithOperation[ListLinksCommand]("links.list"),
		),
		Add: commands.NewHandler[AddLinkCommand](add,
			commands.WithLogger[AddLinkCommand](logger),
			commands.WithOperation[AddLinkCommand]("links.add"),
		),
		Update: commands.NewHandler[UpdateLinkCommand](update,
			commands.WithLogger[UpdateLinkCommand](logger),
			commands.WithOperation[UpdateLinkCommand]("links.update"),
		),
		Remove: commands.NewHandler[RemoveLinkCommand](remove,
			commands.WithLogger[RemoveLinkCommand](logger),
			commands.WithOperation[RemoveLinkCommand]("links.remove"),
			commands.WithTimeout[RemoveLinkCommand](0),
		),
	}
}
