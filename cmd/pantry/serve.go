package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchemorsel/pantry/internal/domain/user"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/server"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/stubserver"
	"github.com/alchemorsel/pantry/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ops server (metrics, health, state snapshot) until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)

			return runApp(cmd, opts, func(ctx context.Context, d deps) error {
				ops := server.NewServer(d.Config.Monitoring.MetricsAddr, d.Metrics, d.Health, server.Stores{
					Selection: d.Selection,
					Search:    d.Search,
					Session:   d.Session,
					Favorites: d.Favorites,
				}, d.Logger)

				return serveUntilDone(ctx, ops.Start, ops.Shutdown)
			})
		},
	}
}

func newServeStubCmd(opts *rootOptions) *cobra.Command {
	var demoEmail, demoPassword string

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run the local stub backend until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			log, _, err := logger.New(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			stub := stubserver.New(stubserver.Options{
				Addr:           cfg.StubAddr(),
				SigningKey:     []byte(cfg.Stub.SigningKey),
				TokenTTL:       cfg.Stub.TokenTTL,
				RecipesPerCall: cfg.Stub.RecipesPerCall,
				MinIngredients: cfg.Search.MinIngredients,
			}, log)

			if demoEmail != "" {
				if err := stub.AddUser(user.User{Name: "Demo", Email: demoEmail}, demoPassword); err != nil {
					return err
				}
				log.Info("Demo account ready", zap.String("email", demoEmail))
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serveUntilDone(ctx, stub.Start, stub.Shutdown)
		},
	}

	cmd.Flags().StringVar(&demoEmail, "demo-email", "demo@pantry.local", "email of a pre-registered account, empty for none")
	cmd.Flags().StringVar(&demoPassword, "demo-password", "pantry123", "password of the pre-registered account")
	return cmd
}

// serveUntilDone runs start until ctx is cancelled, then shuts down
func serveUntilDone(ctx context.Context, start func() error, shutdown func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(start)
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		return shutdown(stopCtx)
	})

	return g.Wait()
}
