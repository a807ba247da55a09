package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaroslav/haloclient/internal/api"
	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/internal/metrics"
	"github.com/yaroslav/haloclient/internal/store"
	"github.com/yaroslav/haloclient/pkg/token"
)

// mockServerOptions configures the local mock API server.
type mockServerOptions struct {
	listenAddr    string
	databasePath  string
	username      string
	password      string
	tokens        []string
	generateToken bool
	tokenSecret   string
	rateLimit     float64
	rateBurst     int
	allowOrigins  []string

	// ready receives the bound address once the server accepts connections.
	ready func(addr string)
}

func newMockServerCommand(opts *globalOptions) *cobra.Command {
	o := &mockServerOptions{}

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local mock of the Halo extension API",
		Long: `Run a local server implementing the extension API over SQLite.

The server:
  - Serves /api/{version}/{plural} and /apis/{group}/{version}/{plural}
  - Stores any resource as JSON, in memory unless --db is set
  - Enforces metadata.version optimistic locking
  - Supports label and field selectors, sorting and paging
  - Accepts HTTP Basic and bearer tokens when configured
  - Exposes Prometheus metrics on /metrics and probes on /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMockServer(cmd.Context(), o, opts.logger, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.listenAddr, "listen", "127.0.0.1:8090", "Address to listen on")
	flags.StringVar(&o.databasePath, "db", "", "Path to the SQLite database file (default in-memory)")
	flags.StringVar(&o.username, "basic-username", "", "Require HTTP Basic authentication with this username")
	flags.StringVar(&o.password, "basic-password", "", "Password for --basic-username")
	flags.StringArrayVar(&o.tokens, "accept-token", nil, "Accept this bearer token, repeatable")
	flags.BoolVar(&o.generateToken, "generate-token", false, "Generate a bearer token and print it")
	flags.StringVar(&o.tokenSecret, "token-secret", "", "HMAC secret for stored token hashes (default random)")
	flags.Float64Var(&o.rateLimit, "rate-limit", 100, "Requests per second per client IP, 0 to disable")
	flags.IntVar(&o.rateBurst, "rate-burst", 200, "Burst size per client IP")
	flags.StringSliceVar(&o.allowOrigins, "cors-origins", nil, "Allowed CORS origins (* for all)")

	return cmd
}

func (o *mockServerOptions) authConfig() (*middleware.AuthConfig, string, error) {
	if o.username == "" && o.password != "" {
		return nil, "", errors.New("--basic-password requires --basic-username")
	}

	secret := o.tokenSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	keyring := token.NewKeyring(secret)

	for _, t := range o.tokens {
		if err := token.ValidateFormat(t); err != nil {
			return nil, "", fmt.Errorf("invalid --accept-token: %w", err)
		}
		keyring.Add(t)
	}

	var generated string
	if o.generateToken {
		t, err := token.Generate()
		if err != nil {
			return nil, "", err
		}
		keyring.Add(t)
		generated = t
	}

	return &middleware.AuthConfig{
		Username: o.username,
		Password: o.password,
		Tokens:   keyring,
	}, generated, nil
}

func runMockServer(ctx context.Context, o *mockServerOptions, logger *zap.Logger, cmd *cobra.Command) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	auth, generated, err := o.authConfig()
	if err != nil {
		return err
	}

	m := metrics.New()
	s, err := store.Open(o.databasePath, logger, m)
	if err != nil {
		return err
	}
	defer s.Close()

	router := api.SetupRouter(&api.RouterConfig{
		Store:        s,
		Logger:       logger,
		Metrics:      m,
		Auth:         auth,
		AllowOrigins: o.allowOrigins,
		RateLimit:    o.rateLimit,
		RateBurst:    o.rateBurst,
	})

	listener, err := net.Listen("tcp", o.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", o.listenAddr, err)
	}

	addr := listener.Addr().String()
	fmt.Fprintf(cmd.OutOrStdout(), "Mock server listening on http://%s\n", addr)
	if generated != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Bearer token: %s\n", generated)
	}

	logger.Info("mock server starting",
		zap.String("addr", addr),
		zap.Bool("auth", auth.Enabled()),
		zap.String("db", o.databasePath),
	)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	if o.ready != nil {
		o.ready(addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down mock server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
