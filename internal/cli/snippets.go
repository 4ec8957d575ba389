package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snippetbox/internal/apperror"
	"github.com/sakif/snippetbox/internal/model"
	"github.com/sakif/snippetbox/internal/query"
	"github.com/sakif/snippetbox/internal/service"
)

// fieldFlags are the form fields of add, edit and draft save. Only flags
// given on the command line override the starting values.
type fieldFlags struct {
	title       string
	description string
	language    string
	code        string
	codeFile    string
	tags        []string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.title, "title", "t", "", "title")
	fs.StringVarP(&f.description, "description", "d", "", "description")
	fs.StringVarP(&f.language, "language", "l", "", "language (default "+service.DefaultLanguage+")")
	fs.StringVarP(&f.code, "code", "c", "", "code")
	fs.StringVarP(&f.codeFile, "code-file", "f", "", "read code from a file, - for stdin")
	fs.StringArrayVar(&f.tags, "tag", nil, "tag (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")
	_ = cmd.RegisterFlagCompletionFunc("language", completeLanguages)
}

func (f *fieldFlags) apply(cmd *cobra.Command, in io.Reader, base model.Fields) (model.Fields, error) {
	fs := cmd.Flags()
	out := base
	if fs.Changed("title") {
		out.Title = f.title
	}
	if fs.Changed("description") {
		out.Description = f.description
	}
	if fs.Changed("language") {
		out.Language = f.language
	}
	if fs.Changed("code") {
		out.Code = f.code
	}
	if fs.Changed("code-file") {
		code, err := readSource(f.codeFile, in)
		if err != nil {
			return model.Fields{}, err
		}
		out.Code = code
	}
	if fs.Changed("tag") {
		out.Tags = service.NormalizeTags(f.tags)
	}
	return out, nil
}

func readSource(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// draftChoice is how add and edit treat a draft left by an earlier attempt.
type draftChoice struct {
	restore bool
	discard bool
}

func (d *draftChoice) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&d.restore, "restore-draft", false, "start from the unsaved draft")
	cmd.Flags().BoolVar(&d.discard, "discard-draft", false, "throw the unsaved draft away")
	cmd.MarkFlagsMutuallyExclusive("restore-draft", "discard-draft")
}

// start returns the values a form for session starts from. A pending draft
// blocks the command until the user restores or discards it.
func (c *cli) start(ctx context.Context, session string, choice draftChoice, base model.Fields) (model.Fields, error) {
	draft, pending, err := c.app.Drafts.Pending(ctx, session)
	if err != nil {
		return model.Fields{}, err
	}

	switch {
	case !pending:
		if choice.restore {
			c.ui.Warn("No draft to restore")
		}
		return base, nil
	case choice.restore:
		return *draft, nil
	case choice.discard:
		if err := c.app.Drafts.Discard(ctx, session); err != nil {
			return model.Fields{}, err
		}
		return base, nil
	default:
		c.ui.Draft(session, draft)
		return model.Fields{}, apperror.ValidationFailed("draft",
			"An unsaved draft exists, rerun with --restore-draft or --discard-draft")
	}
}

// keepDraft saves rejected form values as the draft of session so the next
// attempt can pick them up.
func (c *cli) keepDraft(ctx context.Context, session string, f model.Fields, cause error) error {
	if !errors.Is(cause, apperror.ErrValidation) {
		return cause
	}
	if err := c.app.Drafts.Autosave(ctx, session, f); err != nil {
		return errors.Join(cause, err)
	}
	c.ui.Warn("Draft kept, fix it with --restore-draft")
	return cause
}

func (c *cli) addCommand() *cobra.Command {
	var (
		fields fieldFlags
		choice draftChoice
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a snippet",
		Example: `  snippets add -t "Fetch JSON" -l javascript --tag http -f fetch.js
  pbpaste | snippets add -t "Scratch" -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session := service.NewDraftSession

			base, err := c.start(ctx, session, choice, model.Fields{})
			if err != nil {
				return err
			}
			f, err := fields.apply(cmd, c.opts.In, base)
			if err != nil {
				return err
			}

			s, err := c.app.Snippets.Create(ctx, f)
			if err != nil {
				return c.keepDraft(ctx, session, f, err)
			}
			c.ui.Success("Created %q (%s)", s.Title, s.ID)
			return nil
		},
	}
	fields.register(cmd)
	choice.register(cmd)
	return cmd
}

func (c *cli) editCommand() *cobra.Command {
	var (
		fields fieldFlags
		choice draftChoice
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a snippet, keeping the old values in its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			session := service.DraftSession(id)

			current, err := c.app.Snippets.GetByID(ctx, id)
			if err != nil {
				return err
			}
			base, err := c.start(ctx, session, choice, current.Fields())
			if err != nil {
				return err
			}
			f, err := fields.apply(cmd, c.opts.In, base)
			if err != nil {
				return err
			}

			s, err := c.app.Snippets.Edit(ctx, id, f)
			if err != nil {
				return c.keepDraft(ctx, session, f, err)
			}
			c.ui.Success("Saved %q, %d earlier version(s)", s.Title, len(s.Versions))
			return nil
		},
	}
	fields.register(cmd)
	choice.register(cmd)
	return cmd
}

// queryFlags are the listing filters.
type queryFlags struct {
	search   string
	tag      string
	language string
	sort     string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&q.search, "search", "s", "", "match title, description or code")
	fs.StringVar(&q.tag, "tag", "", "only snippets with this tag")
	fs.StringVarP(&q.language, "language", "l", "", "only snippets in this language")
	fs.StringVar(&q.sort, "sort", string(query.SortByDate), "one of "+query.SortKeyList())
	_ = cmd.RegisterFlagCompletionFunc("language", completeLanguages)
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
}

func completeLanguages(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return withPrefix(service.SupportedLanguages, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeSortKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys := make([]string, len(query.SortKeys))
	for i, k := range query.SortKeys {
		keys[i] = string(k)
	}
	return withPrefix(keys, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func withPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}

func (q *queryFlags) build() (query.Query, error) {
	key, err := query.ParseSortKey(q.sort)
	if err != nil {
		return query.Query{}, apperror.ValidationFailed("sort", err.Error())
	}
	return query.Query{
		View:     query.Active,
		Search:   strings.TrimSpace(q.search),
		Tag:      q.tag,
		Language: q.language,
		SortBy:   key,
	}, nil
}

func (c *cli) listCommand() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snippets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.build()
			if err != nil {
				return err
			}
			snippets, outcome, err := c.app.Snippets.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.ui.Snippets(snippets, outcome, q)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) trashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List snippets in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := query.Query{View: query.Trash}
			snippets, outcome, err := c.app.Snippets.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.ui.Snippets(snippets, outcome, q)
		},
	}
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a snippet with highlighted code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Snippets.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.ui.Snippet(s)
		},
	}
}

func (c *cli) tagsCommand() *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				tags []string
				err  error
			)
			if match != "" {
				tags, err = c.app.Snippets.SuggestTags(cmd.Context(), match, nil)
			} else {
				tags, err = c.app.Snippets.Tags(cmd.Context())
			}
			if err != nil {
				return err
			}
			c.ui.List(tags, "No tags")
			return nil
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "only tags starting with this prefix")
	return cmd
}

func (c *cli) languagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			langs, err := c.app.Snippets.Languages(cmd.Context())
			if err != nil {
				return err
			}
			c.ui.List(langs, "No languages")
			return nil
		},
	}
}

func (c *cli) favCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle a snippet's favorite mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Snippets.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.IsFavorite {
				c.ui.Success("★ %q is a favorite", s.Title)
			} else {
				c.ui.Success("%q is no longer a favorite", s.Title)
			}
			return nil
		},
	}
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Move a snippet to the trash",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Snippets.SoftDelete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.ui.Success("Moved %q to the trash", s.Title)
			return nil
		},
	}
}

func (c *cli) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Bring a snippet back from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Snippets.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.ui.Success("Restored %q", s.Title)
			return nil
		},
	}
}

func (c *cli) purgeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <id>",
		Short: "Delete a trashed snippet for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.app.Snippets.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes && !c.confirm(fmt.Sprintf("Permanently delete %q? This cannot be undone.", s.Title)) {
				c.ui.Println("Cancelled")
				return nil
			}
			if err := c.app.Snippets.PermanentDelete(ctx, s.ID); err != nil {
				return err
			}
			c.ui.Success("Deleted %q permanently", s.Title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var diff int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "List a snippet's earlier versions, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Snippets.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("diff") {
				return c.ui.History(s)
			}
			if diff < 0 || diff >= len(s.Versions) {
				return apperror.ValidationFailed("version",
					fmt.Sprintf("version %d does not exist (%d version(s))", diff, len(s.Versions)))
			}
			c.ui.Diff(s.Versions[diff].Code, s.Code)
			return nil
		},
	}
	cmd.Flags().IntVar(&diff, "diff", 0, "show the code changes from this version to the current one")
	return cmd
}

func (c *cli) revertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <id> <version>",
		Short: "Restore an earlier version; the current values go to the history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var index int
			if _, err := fmt.Sscan(args[1], &index); err != nil {
				return apperror.ValidationFailed("version", "version must be a number")
			}
			s, err := c.app.Snippets.RestoreVersion(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			c.ui.Success("Restored version %d of %q", index, s.Title)
			return nil
		},
	}
}

// confirm asks a yes/no question on the input. Anything but y or yes is no.
func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.opts.Out, "%s [y/N] ", question)
	var answer string
	if _, err := fmt.Fscanln(c.opts.In, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
