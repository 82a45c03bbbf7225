package cli

import (
	"context"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/internal/api"
	"github.com/orchestree/orchestree/pkg/config"
	"github.com/orchestree/orchestree/pkg/store"
)

// serveCommand runs the HTTP rendering service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram rendering HTTP service",
		Long: `Run an HTTP service that renders architecture descriptions on request and
keeps rendered diagrams for a limited time.

Routes:
  POST   /v1/render               render a description (?format=svg|png|pdf|dot)
  POST   /v1/diagrams             render and store a diagram
  GET    /v1/diagrams/{id}        stored diagram metadata
  GET    /v1/diagrams/{id}/svg    stored diagram download
  DELETE /v1/diagrams/{id}        remove a stored diagram`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if backend != "" {
				cfg.Server.Store = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			runner, err := c.newRunner(ctx, runnerOpts{})
			if err != nil {
				return err
			}
			defer runner.Close()

			s := newSpinner(ctx, "Opening "+cfg.Server.Store+" store")
			s.Start()
			st, err := newStore(ctx, cfg)
			s.Stop()
			if err != nil {
				return err
			}
			defer st.Close()

			a := &api.API{
				Runner:     runner,
				Store:      st,
				Logger:     c.Logger,
				DiagramTTL: cfg.Server.DiagramTTL,
			}

			l, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return err
			}

			go api.RunCleanup(ctx, st, api.CleanupInterval, c.Logger)

			c.Logger.Info("listening", "addr", l.Addr().String(), "store", cfg.Server.Store, "cache", cfg.Cache.Backend)
			base := "http://" + displayAddr(l.Addr())
			printKeyValue("URL", StyleLink.Render(base))
			printNextStep("Render a description", "curl --data-binary @infra.yaml "+base+"/v1/render")
			if err := api.Serve(ctx, api.NewServer(c.Logger, a.Handler()), l); err != nil {
				return err
			}
			c.Logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&backend, "store", "", "diagram store: memory, file or mongo")
	return cmd
}

// displayAddr replaces an unspecified listen host with localhost.
func displayAddr(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return a.String()
	}
	return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Server.Store {
	case config.StoreFile:
		return store.NewFileStore(cfg.Server.StoreDir)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Server.MongoURI,
			Database: cfg.Server.MongoDatabase,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
