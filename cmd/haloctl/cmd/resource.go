package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/yaroslav/haloclient/cmd/haloctl/printer"
	"github.com/yaroslav/haloclient/models"
	"github.com/yaroslav/haloclient/sdk"
)

// defaultDeleteConcurrency bounds parallel deletes.
const defaultDeleteConcurrency = 4

// resourceKind describes one resource for the generic commands.
type resourceKind[T any, L any] struct {
	use     string
	aliases []string
	short   string
	columns []printer.Column

	// name prefixes printed names, e.g. "user" in "user/alice".
	name func() string

	// clientFor selects the operation set on a connected client.
	clientFor func(*sdk.Client) (*sdk.ResourceClient[T, L], error)
}

func newUsersColumns() []printer.Column {
	return []printer.Column{
		printer.Field("NAME", "metadata", "name"),
		printer.Field("DISPLAY NAME", "spec", "displayName"),
		printer.Field("EMAIL", "spec", "email"),
		printer.Field("DISABLED", "spec", "disabled"),
		printer.Age("AGE", "metadata", "creationTimestamp"),
	}
}

func newAttachmentsColumns() []printer.Column {
	return []printer.Column{
		printer.Field("NAME", "metadata", "name"),
		printer.Field("DISPLAY NAME", "spec", "displayName"),
		printer.Field("MEDIA TYPE", "spec", "mediaType"),
		printer.Field("SIZE", "spec", "size"),
		printer.Field("OWNER", "spec", "ownerName"),
		printer.Age("AGE", "metadata", "creationTimestamp"),
	}
}

func newUsersCommand(opts *globalOptions) *cobra.Command {
	return newResourceCommand(opts, resourceKind[models.User, models.UserList]{
		use:     "users",
		aliases: []string{"user"},
		short:   "Manage users (/api/v1alpha1/users)",
		columns: newUsersColumns(),
		name: func() string { return "user" },
		clientFor: func(c *sdk.Client) (*sdk.UserClient, error) {
			return c.Users(), nil
		},
	})
}

func newAttachmentsCommand(opts *globalOptions) *cobra.Command {
	return newResourceCommand(opts, resourceKind[models.Attachment, models.AttachmentList]{
		use:     "attachments",
		aliases: []string{"attachment"},
		short:   "Manage attachments (/apis/storage.halo.run/v1alpha1/attachments)",
		columns: newAttachmentsColumns(),
		name: func() string { return "attachment" },
		clientFor: func(c *sdk.Client) (*sdk.AttachmentClient, error) {
			return c.Attachments(), nil
		},
	})
}

// newDynamicCommand serves any extension given its group, version and plural.
func newDynamicCommand(opts *globalOptions) *cobra.Command {
	var gvr schema.GroupVersionResource

	cmd := newResourceCommand(opts, resourceKind[unstructured.Unstructured, sdk.UnstructuredList]{
		use:     "resource",
		aliases: []string{"res"},
		short:   "Manage any extension resource by group, version and plural",
		columns: printer.DefaultColumns(),
		name:    func() string { return gvr.Resource },
		clientFor: func(c *sdk.Client) (*sdk.DynamicClient, error) {
			if gvr.Version == "" || gvr.Resource == "" {
				return nil, fmt.Errorf("--version and --plural are required")
			}
			return c.Dynamic(gvr), nil
		},
	})

	cmd.Long = `Manage any extension resource. An empty --group selects the core API
served under /api/{version}; other groups are served under /apis/{group}/{version}.`
	flags := cmd.PersistentFlags()
	flags.StringVar(&gvr.Group, "group", "", "API group (empty for the core group)")
	flags.StringVar(&gvr.Version, "version", "v1alpha1", "API version")
	flags.StringVar(&gvr.Resource, "plural", "", "Plural resource name (e.g. posts)")

	return cmd
}

// newResourceCommand builds get, list, create, update, patch and delete for
// one resource kind.
func newResourceCommand[T any, L any](opts *globalOptions, kind resourceKind[T, L]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     kind.use,
		Aliases: kind.aliases,
		Short:   kind.short,
	}

	// connect resolves the operation set when a subcommand runs.
	connect := func() (*sdk.ResourceClient[T, L], error) {
		client, err := opts.client()
		if err != nil {
			return nil, err
		}
		return kind.clientFor(client)
	}

	printObj := func(cmd *cobra.Command, v interface{}) error {
		p, err := printer.New(opts.settings.Output, kind.columns)
		if err != nil {
			return err
		}
		return p.Print(cmd.OutOrStdout(), v)
	}

	getCmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Get one object by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect()
			if err != nil {
				return err
			}
			obj, err := rc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printObj(cmd, obj)
		},
	}

	lf := newListFlags()
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + kind.use,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect()
			if err != nil {
				return err
			}
			list, err := rc.List(cmd.Context(), lf.ListOptions())
			if err != nil {
				return err
			}
			return printObj(cmd, list)
		},
	}
	listCmd.Flags().AddFlagSet(lf.flags)

	var createFile string
	createCmd := &cobra.Command{
		Use:   "create -f FILE",
		Short: "Create from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := readObject[T](createFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rc, err := connect()
			if err != nil {
				return err
			}
			created, err := rc.Create(cmd.Context(), obj)
			if err != nil {
				return err
			}
			return printObj(cmd, created)
		},
	}
	createCmd.Flags().StringVarP(&createFile, "filename", "f", "", "File to read, - for stdin")

	var updateFile string
	updateCmd := &cobra.Command{
		Use:   "update NAME -f FILE",
		Short: "Replace from a JSON or YAML file",
		Long: `Replace an object. The file must carry the current metadata.version,
otherwise the server rejects the update with a conflict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := readObject[T](updateFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rc, err := connect()
			if err != nil {
				return err
			}
			updated, err := rc.Update(cmd.Context(), args[0], obj)
			if err != nil {
				return err
			}
			return printObj(cmd, updated)
		},
	}
	updateCmd.Flags().StringVarP(&updateFile, "filename", "f", "", "File to read, - for stdin")

	var (
		patchFile string
		patchOps  []string
	)
	patchCmd := &cobra.Command{
		Use:   "patch NAME (-f FILE | --op 'OP PATH [VALUE]'...)",
		Short: "Apply a JSON patch",
		Example: `  haloctl users patch alice --op 'replace /spec/displayName "Alice"'
  haloctl users patch alice --op 'add /metadata/labels/team docs' --op 'remove /spec/avatar'
  haloctl users patch alice -f patch.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := readPatch(patchFile, patchOps, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rc, err := connect()
			if err != nil {
				return err
			}
			patched, err := rc.Patch(cmd.Context(), args[0], ops)
			if err != nil {
				return err
			}
			return printObj(cmd, patched)
		},
	}
	patchCmd.Flags().StringVarP(&patchFile, "filename", "f", "", "JSON patch file, - for stdin")
	patchCmd.Flags().StringArrayVar(&patchOps, "op", nil, "Patch operation OP PATH [VALUE], repeatable")

	var concurrency int
	deleteCmd := &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete one or more " + kind.use,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := connect()
			if err != nil {
				return err
			}

			deleted, err := deleteAll(cmd.Context(), args, concurrency, func(ctx context.Context, name string) error {
				return rc.Delete(ctx, name)
			})
			for _, name := range deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s deleted\n", kind.name(), name)
			}
			return err
		},
	}
	deleteCmd.Flags().IntVar(&concurrency, "concurrency", defaultDeleteConcurrency, "Maximum parallel deletes")

	cmd.AddCommand(getCmd, listCmd, createCmd, updateCmd, patchCmd, deleteCmd)
	return cmd
}

// deleteAll calls del for every name with at most limit calls in flight.
// Every failure is reported; the returned names succeeded, in input order.
func deleteAll(ctx context.Context, names []string, limit int, del func(context.Context, string) error) ([]string, error) {
	if limit <= 0 {
		limit = 1
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
		ok     = make([]bool, len(names))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, name := range names {
		g.Go(func() error {
			if err := del(ctx, name); err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var deleted []string
	for i, name := range names {
		if ok[i] {
			deleted = append(deleted, name)
		}
	}

	if result != nil {
		result.ErrorFormat = deleteErrorFormat
	}
	return deleted, result.ErrorOrNil()
}

func deleteErrorFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  " + err.Error()
	}
	return fmt.Sprintf("%d delete(s) failed:\n%s", len(errs), strings.Join(lines, "\n"))
}
