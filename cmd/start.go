package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entity-sync/core/config"
	"entity-sync/core/loader"
	"entity-sync/core/logger"
	"entity-sync/core/middleware/auth"
	"entity-sync/core/middleware/rayid"
	"entity-sync/core/reconcile"
	"entity-sync/feature/schema"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ephemeral bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Reconcile the schema and serve the schema report API",
	Long: `Applies the configured policy to every declared entity, then starts the HTTP
server. With --ephemeral the schema is created at startup and dropped again on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(func(cfg *config.Config) {
			if ephemeral {
				cfg.Schema.Policy = reconcile.CreateAndTrackForDrop.String()
			}
		})
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		// 1. Reconcile before serving anything
		policy, enabled, err := rt.cfg.Schema.StartupPolicy()
		if err != nil {
			return err
		}
		if enabled {
			if _, err := rt.service.Apply(cmd.Context(), policy, rt.descriptors...); err != nil {
				return err
			}
		}

		// 2. Serve the report API unless disabled
		var app *fiber.App
		if !rt.cfg.Server.Disabled {
			app = newApp(rt.cfg, logg)
			if err := loadFeatures(app, logg, rt.service); err != nil {
				return err
			}
			go func() {
				logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
				if err := app.Listen(rt.cfg.Server.Address()); err != nil {
					logg.Error("Server stopped", zap.Error(err))
				}
			}()
		}

		// 3. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")
		if app != nil {
			_ = app.Shutdown()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := rt.service.Teardown(ctx); err != nil {
			logg.Error("Failed to drop tracked schema", zap.Error(err), zap.Int("remaining", rt.service.Tracked()))
			return err
		}
		return nil
	},
}

// newApp builds the fiber application with request tracing and API key protection.
func newApp(cfg *config.Config, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
	return app
}

func loadFeatures(app *fiber.App, logg *zap.Logger, svc *schema.Service) error {
	mgr := loader.NewManager()
	mgr.Register(schema.NewFeature(svc))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))
	return nil
}

func init() {
	startCmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "Create the schema at startup and drop it on shutdown")
	RootCmd.AddCommand(startCmd)
}
