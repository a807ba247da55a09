package cmd

import (
	"github.com/spf13/pflag"

	"github.com/yaroslav/haloclient/sdk"
)

// listFlags are the paging, selector and sort flags of list commands.
type listFlags struct {
	page          int
	size          int
	labelSelector []string
	fieldSelector []string
	sort          []string

	flags *pflag.FlagSet
}

// newListFlags returns the list flag set bound to a new listFlags.
func newListFlags() *listFlags {
	f := &listFlags{}

	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	flags.IntVar(&f.page, "page", 0, "Page number, starting at 1 (default all)")
	flags.IntVar(&f.size, "size", 0, "Page size (default all)")
	flags.StringArrayVarP(&f.labelSelector, "label-selector", "l", nil, "Label selector, repeatable (e.g. -l role=admin -l '!hidden')")
	flags.StringArrayVar(&f.fieldSelector, "field-selector", nil, "Field selector, repeatable (e.g. --field-selector metadata.name==alice)")
	flags.StringArrayVar(&f.sort, "sort", nil, "Sort by property[,asc|desc], repeatable")
	f.flags = flags

	return f
}

// ListOptions converts the flags to SDK list options. Page and size are only
// sent when set on the command line.
func (f *listFlags) ListOptions() *sdk.ListOptions {
	opts := &sdk.ListOptions{
		LabelSelector: f.labelSelector,
		FieldSelector: f.fieldSelector,
		Sort:          f.sort,
	}
	if f.flags.Changed("page") {
		opts.Page = sdk.Int(f.page)
	}
	if f.flags.Changed("size") {
		opts.Size = sdk.Int(f.size)
	}
	return opts
}
