package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaroslav/haloclient/cmd/haloctl/browse"
	"github.com/yaroslav/haloclient/cmd/haloctl/printer"
	"github.com/yaroslav/haloclient/sdk"
)

func newBrowseCommand(opts *globalOptions) *cobra.Command {
	var size int
	lf := newListFlags()

	cmd := &cobra.Command{
		Use:       "browse (users|attachments)",
		Short:     "Browse a resource page by page in an interactive table",
		Long:      `Browse opens a full-screen table. Use n and p to change pages, r to refresh and q to quit.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"users", "attachments"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			var (
				title   string
				columns []printer.Column
				fetch   browse.Fetcher
			)
			switch args[0] {
			case "users", "user":
				title, columns = "Users", newUsersColumns()
				fetch = pageFetcher(client.Users(), lf.ListOptions())
			case "attachments", "attachment":
				title, columns = "Attachments", newAttachmentsColumns()
				fetch = pageFetcher(client.Attachments(), lf.ListOptions())
			default:
				return cmd.Usage()
			}

			m := browse.New(cmd.Context(), title, columns, size, fetch)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&size, "size", 20, "Objects per page")
	lf.flags.VisitAll(func(f *pflag.Flag) {
		// Paging is driven by the browser
		if f.Name != "page" && f.Name != "size" {
			cmd.Flags().AddFlag(f)
		}
	})

	return cmd
}

// pageFetcher lists one page of rc with the selectors and sort of base.
func pageFetcher[T any, L any](rc *sdk.ResourceClient[T, L], base *sdk.ListOptions) browse.Fetcher {
	return func(ctx context.Context, page, size int) (browse.Page, error) {
		opts := *base
		opts.Page = sdk.Int(page)
		opts.Size = sdk.Int(size)

		list, err := rc.List(ctx, &opts)
		if err != nil {
			return browse.Page{}, err
		}
		return browse.PageFrom(list)
	}
}
