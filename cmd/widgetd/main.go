// Command widgetd hosts auth widgets behind an HTTP API. Each widget
// streams its renders to browsers over server-sent events.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/widgetkit/bootstrap"
	"github.com/kbukum/widgetkit/component"
	"github.com/kbukum/widgetkit/config"
	"github.com/kbukum/widgetkit/internal/demo"
	"github.com/kbukum/widgetkit/internal/host"
	"github.com/kbukum/widgetkit/logger"
	"github.com/kbukum/widgetkit/observability"
	"github.com/kbukum/widgetkit/server"
	"github.com/kbukum/widgetkit/sse"
	"github.com/kbukum/widgetkit/version"
	"github.com/kbukum/widgetkit/widget"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}
	if err := run(context.Background(), *configFile); err != nil {
		fmt.Fprintln(os.Stderr, "widgetd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	var cfg config.ServiceConfig
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if err := config.Load("widgetd", &cfg, opts...); err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.Version
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	metrics, err := setupObservability(ctx, app)
	if err != nil {
		return err
	}

	stream := sse.NewComponent("/widgets/:id/events")
	rt := widget.NewRuntime(cfg.Engine, sse.NewMounter(stream.Hub()), widget.WithMetrics(metrics))

	srv := server.New(cfg.HTTP, logger.Get("server"))
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	host.New(rt, stream.Hub(), demo.Login).Register(srv.Engine())

	for _, c := range []component.Component{
		stream,
		component.Func{ID: "widgets", OnStop: rt.Close},
		server.NewComponent(srv),
	} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return app.Run(ctx)
}

// setupObservability installs the OTLP providers when enabled and returns
// the engine metrics. Metrics are recorded against the global meter either
// way.
func setupObservability(ctx context.Context, app *bootstrap.App) (*observability.Metrics, error) {
	oc := app.Cfg.Observability
	if oc.Enabled {
		tp, err := observability.InitTracer(ctx, oc.Tracer(app.Name, app.Version, app.Cfg.Environment))
		if err != nil {
			return nil, err
		}
		mp, err := observability.InitMeter(ctx, oc.Meter(app.Name, app.Version, app.Cfg.Environment))
		if err != nil {
			return nil, err
		}
		if err := app.RegisterComponent(component.Func{
			ID: "telemetry",
			OnStop: func(ctx context.Context) error {
				return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
			},
		}); err != nil {
			return nil, err
		}
	}
	return observability.NewMetrics(observability.Meter("github.com/kbukum/widgetkit"))
}
