package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/snippetbox/internal/service"
)

func (c *cli) exportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole collection, trash included, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.app.Snippets.Export(cmd.Context())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := c.opts.Out.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			c.ui.Success("Exported to %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", service.DefaultExportFile, "output file, - for stdout")
	return cmd
}

func (c *cli) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with an exported file",
		Long: `import replaces the whole collection with the snippets in file (- for
stdin). The file is checked first; if any record is malformed nothing
changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(args[0], c.opts.In)
			if err != nil {
				return err
			}
			n, err := c.app.Snippets.Import(cmd.Context(), []byte(data))
			if err != nil {
				return err
			}
			c.ui.Success("Imported %d snippet(s)", n)
			return nil
		},
	}
}
