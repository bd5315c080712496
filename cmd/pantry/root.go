package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/favorites"
	"github.com/alchemorsel/pantry/internal/application/search"
	"github.com/alchemorsel/pantry/internal/application/selection"
	"github.com/alchemorsel/pantry/internal/application/session"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/container"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
)

const stopTimeout = 30 * time.Second

type rootOptions struct {
	configPath string
}

// deps are the components a command works with
type deps struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
	Health    *healthcheck.HealthCheck
	Selection *selection.Store
	Session   *session.Store
	Search    *search.Store
	Favorites *favorites.Store
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "Pick ingredients, generate recipes",
		Long: `pantry keeps an ingredient selection, asks the recipe backend for
recipes that use it and manages the signed-in user's session, profile and
favorites. State survives between runs with the sqlite or redis storage
driver.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./pantry.yaml)")

	cmd.AddCommand(
		newLoginCmd(opts),
		newSignupCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newProfileCmd(opts),
		newSelectCmd(opts),
		newSearchCmd(opts),
		newFavoritesCmd(opts),
		newShoppingListCmd(opts),
		newServeCmd(opts),
		newServeStubCmd(opts),
	)

	return cmd
}

// runApp starts the container, runs fn and stops the container again
func runApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, d deps) error) error {
	var d deps
	app := fx.New(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(opts.configPath)),
		container.Module,
		fx.Invoke(func(in deps) { d = in }),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, d)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return errors.Join(runErr, app.Stop(stopCtx))
}

// userMessage returns the message to print for err
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
