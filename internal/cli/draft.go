package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/service"
)

func (c *cli) draftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage unsaved form drafts",
		Long: `A draft holds the form values of an add (session "new") or of an edit
(session = snippet id) that have not been saved yet. add and edit refuse
to run while a draft is pending for their session.`,
	}
	cmd.AddCommand(c.draftSaveCommand(), c.draftShowCommand(), c.draftDiscardCommand(), c.draftListCommand())
	return cmd
}

func (c *cli) draftSaveCommand() *cobra.Command {
	var (
		id     string
		fields fieldFlags
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store form values without saving the snippet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session := service.DraftSession(id)

			var base model.Fields
			draft, pending, err := c.app.Drafts.Pending(ctx, session)
			switch {
			case err != nil:
				return err
			case pending:
				base = *draft
			case id != "":
				s, err := c.app.Snippets.GetByID(ctx, id)
				if err != nil {
					return err
				}
				base = s.Fields()
			}

			f, err := fields.apply(cmd, c.opts.In, base)
			if err != nil {
				return err
			}
			if err := c.app.Drafts.Autosave(ctx, session, f); err != nil {
				return err
			}
			c.ui.Success("Draft saved (%s)", session)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "snippet being edited (empty for a new snippet)")
	fields.register(cmd)
	return cmd
}

func (c *cli) draftShowCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the pending draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := service.DraftSession(id)
			draft, pending, err := c.app.Drafts.Pending(cmd.Context(), session)
			if err != nil {
				return err
			}
			if !pending {
				c.ui.Println("No draft")
				return nil
			}
			c.ui.Draft(session, draft)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "snippet being edited (empty for a new snippet)")
	return cmd
}

func (c *cli) draftDiscardCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Throw the pending draft away",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := service.DraftSession(id)
			if err := c.app.Drafts.Discard(cmd.Context(), session); err != nil {
				return err
			}
			c.ui.Success("Draft discarded (%s)", session)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "snippet being edited (empty for a new snippet)")
	return cmd
}

func (c *cli) draftListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the sessions with a pending draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.app.Drafts.List(cmd.Context())
			if err != nil {
				return err
			}
			c.ui.List(sessions, "No drafts")
			return nil
		},
	}
}
