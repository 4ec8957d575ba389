package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/snippetbox/internal/apperror"
)

func (c *cli) themeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dark, err := c.app.Prefs.DarkMode(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				c.ui.Println(themeName(dark))
				return nil
			}

			switch args[0] {
			case "dark":
				dark = true
			case "light":
				dark = false
			case "toggle":
				dark = !dark
			default:
				return apperror.ValidationFailed("theme", "theme must be dark, light or toggle")
			}
			if err := c.app.Prefs.SetDarkMode(ctx, dark); err != nil {
				return err
			}
			c.ui = NewUI(c.opts.Out, dark)
			c.ui.Success("Theme set to %s", themeName(dark))
			return nil
		},
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
