// Package serve implements the serve command that runs the HTTP API.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	api "github.com/trailtracker/trailtracker/internal/api/v2"
	"github.com/trailtracker/trailtracker/internal/buildinfo"
	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/datastore"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/httpserver"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/mqtt"
	"github.com/trailtracker/trailtracker/internal/observability"
	"github.com/trailtracker/trailtracker/internal/telemetry"
)

// Command creates the serve command.
func Command(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Open the configured database and serve the trail tracker API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), settings, build)
		},
	}

	cmd.Flags().String("port", "", "Port to listen on")
	cmd.Flags().String("listen", "", "Address to bind")
	_ = viper.BindPFlag("webserver.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("webserver.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

// Run starts every service and blocks until ctx is cancelled, SIGINT or SIGTERM
// arrives, or the HTTP server fails.
func Run(ctx context.Context, settings *conf.Settings, build *buildinfo.Context) error {
	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return errors.New(err).
			Component("serve").
			Category(errors.CategoryConfiguration).
			Context("operation", "init-logger").
			Build()
	}
	logger.SetGlobal(central)
	defer func() { _ = central.Close() }()

	log := central.Module("main")
	log.Info("starting trailtracker",
		logger.String("version", build.Version()),
		logger.String("commit", build.Commit()))

	if err := telemetry.InitSentry(settings, build.Version(), central.Module("telemetry")); err != nil {
		log.Warn("error telemetry disabled", logger.Error(err))
	}
	defer telemetry.Flush()

	m, err := observability.NewMetrics()
	if err != nil {
		return errors.New(err).
			Component("serve").
			Category(errors.CategorySystem).
			Context("operation", "init-metrics").
			Build()
	}

	ds := datastore.New(settings, central.Module("datastore"), m.Datastore)
	if ds == nil {
		return errors.New(errors.NewStd("no database enabled in output settings")).
			Component("serve").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := ds.Open(); err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Error("failed to close datastore", logger.Error(err))
		}
	}()

	var (
		publisher mqtt.Publisher = mqtt.NoopPublisher{}
		client    mqtt.Client
		mqttCfg   mqtt.Config
		mqttLog   = central.Module("mqtt")
	)
	if settings.MQTT.Enabled {
		mqttCfg = mqtt.ConfigFromSettings(settings)
		client = mqtt.NewClient(mqttCfg, mqttLog, m.MQTT)
		defer client.Disconnect()
		publisher = mqtt.NewEventPublisher(client, mqttCfg.Topic, mqttLog)
	}

	srv, err := httpserver.New(settings, ds,
		httpserver.WithMetrics(m),
		httpserver.WithLogger(central.Module("http")),
		httpserver.WithAccessLogger(central.Module("access")),
		httpserver.WithAPIOptions(api.WithPublisher(publisher)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if client != nil {
		// The API keeps serving without a broker; events are dropped until connected.
		g.Go(func() error {
			if err := client.Connect(gctx); err != nil {
				mqttLog.Warn("MQTT broker unavailable, scan events will not be published",
					logger.String("broker", mqttCfg.Broker),
					logger.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		return srv.Start(gctx)
	})

	err = g.Wait()
	log.Info("trailtracker stopped")
	return err
}
