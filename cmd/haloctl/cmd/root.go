package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaroslav/haloclient/cmd/haloctl/config"
	"github.com/yaroslav/haloclient/internal/logging"
	"github.com/yaroslav/haloclient/sdk"
)

var (
	// Version information (set at build time via ldflags)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags and what they resolve to.
type globalOptions struct {
	configPath string
	server     string
	token      string
	username   string
	password   string
	timeout    time.Duration
	retries    int
	output     string
	devMode    bool
	logLevel   string

	settings config.Settings
	logger   *zap.Logger
}

// NewRootCommand builds the haloctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "haloctl",
		Short: "haloctl - command-line client for the Halo extension API",
		Long: `haloctl manages Halo extension resources over the REST API.

Settings are read from the config file (~/.haloctl.yaml), then from the
HALO_SERVER, HALO_TOKEN, HALO_USERNAME and HALO_PASSWORD environment
variables, then from flags. Later sources win.

Examples:
  haloctl users list -l role=admin --sort metadata.creationTimestamp,desc
  haloctl attachments get logo.png -o yaml
  haloctl resource --group content.halo.run --version v1alpha1 --plural posts list
  haloctl mock-server --username admin --password secret`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.complete(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to the haloctl config file")
	flags.StringVarP(&opts.server, "server", "s", "", "Halo server URL (e.g. http://localhost:8090)")
	flags.StringVar(&opts.token, "token", "", "Bearer token (personal access token)")
	flags.StringVarP(&opts.username, "username", "u", "", "Username for HTTP Basic authentication")
	flags.StringVarP(&opts.password, "password", "p", "", "Password for HTTP Basic authentication")
	flags.DurationVar(&opts.timeout, "timeout", 0, "HTTP request timeout (default 30s)")
	flags.IntVar(&opts.retries, "retries", 0, "Retries for failed requests (5xx, 429, network errors)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output format. One of: table|json|yaml|name")
	flags.BoolVar(&opts.devMode, "dev", false, "Enable development mode (console logging)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCommand(),
		newUsersCommand(opts),
		newAttachmentsCommand(opts),
		newDynamicCommand(opts),
		newBrowseCommand(opts),
		newMockServerCommand(opts),
	)

	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// complete merges config file, environment and flags into settings.
func (o *globalOptions) complete(cmd *cobra.Command) error {
	logger, err := logging.New(o.devMode, o.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.logger = logger

	cfg, err := config.Load(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	o.settings = cfg.Settings()
	o.settings.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	if flags.Changed("server") {
		o.settings.Server = o.server
	}
	if flags.Changed("token") {
		o.settings.Token = o.token
	}
	if flags.Changed("username") {
		o.settings.Username = o.username
	}
	if flags.Changed("password") {
		o.settings.Password = o.password
	}
	if flags.Changed("timeout") {
		o.settings.Timeout = o.timeout
	}
	if flags.Changed("retries") {
		o.settings.Retries = o.retries
	}
	if flags.Changed("output") {
		o.settings.Output = o.output
	}

	return nil
}

// client validates the settings and creates an SDK client.
func (o *globalOptions) client() (*sdk.Client, error) {
	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return sdk.NewClient(o.settings.ClientConfig(o.logger))
}
