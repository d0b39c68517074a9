package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"time"

	"contrib.go.opencensus.io/exporter/jaeger"
	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	kitlog "github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opencensus.io/trace"

	"github.com/outflux/outflux/internal/telem"
	"github.com/outflux/outflux/pkg/outstream"
	"github.com/outflux/outflux/pkg/outstream/bigquery"
	"github.com/outflux/outflux/pkg/outstream/database"
	"github.com/outflux/outflux/pkg/outstream/plot"
	"github.com/outflux/outflux/pkg/outstream/print"
	"github.com/outflux/outflux/pkg/source"
	"github.com/outflux/outflux/pkg/xmltree"
)

// builders maps configuration tags onto the outstream types this binary
// supports.
var builders = map[string]outstream.Builder{
	print.Type:    func(logger kitlog.Logger) outstream.Entity { return print.New(logger) },
	plot.Type:     func(logger kitlog.Logger) outstream.Entity { return plot.New(logger) },
	database.Type: func(logger kitlog.Logger) outstream.Entity { return database.New(logger) },
	bigquery.Type: func(logger kitlog.Logger) outstream.Entity { return bigquery.New(logger) },
}

func runStream(ctx context.Context, shutdown chan struct{}, configFile string) error {
	// Every invocation gets a run ID, so artifacts and log lines from one run
	// can be told apart from the next.
	runID := uuid.New().String()
	logger := kitlog.With(logger, "run_id", runID)

	ctx = telem.WithLogger(ctx, logger)
	ctx = telem.WithRunID(ctx, runID)

	xmltree.SetLogger(logger)

	_, root, err := xmltree.Load(configFile)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	sources, watchPaths, err := buildSources(logger, root)
	if err != nil {
		return err
	}

	streams := xmltree.FindPath(root, "OutStreams")
	if streams == nil {
		return UsageError{errors.New("configuration has no OutStreams block")}
	}

	registry := outstream.NewRegistry()
	for tag, builder := range builders {
		registry.Register(tag, builder)
	}

	entities, err := registry.BuildAll(logger, streams)
	if err != nil {
		return UsageError{err}
	}

	if *runDryRun {
		for _, entity := range entities {
			fmt.Printf("%s %q:\n", entity.Type(), entity.Name())
			spew.Dump(entity.InitParams())
		}

		return nil
	}

	instrumented := make([]outstream.Entity, len(entities))
	for idx, entity := range entities {
		if err := entity.Initialize(ctx, sources); err != nil {
			return errors.Wrapf(err, "failed to initialize outstream %s", entity.Name())
		}

		// Entities holding connections clean up once the run is over
		if closer, ok := entity.(io.Closer); ok {
			defer closer.Close()
		}

		instrumented[idx] = outstream.Instrument(logger, entity)
	}

	var g run.Group

	{
		logger := kitlog.With(logger, "component", "shutdown_handler")

		ctx, cancel := context.WithCancel(ctx)

		// If we're asked to shutdown, we use the rungroup to trigger interrupts for every
		// component
		g.Add(
			func() error {
				select {
				case <-shutdown:
					logger.Log("event", "requesting_shutdown", "msg", "received signal, requesting shutdown")
				case <-ctx.Done():
				}

				return nil
			},
			func(error) {
				cancel() // end the shutdown select
			},
		)
	}

	{
		logger := kitlog.With(logger, "component", "metrics")

		// Metrics and debug endpoints
		mux := http.NewServeMux()

		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		srv := &http.Server{Addr: fmt.Sprintf("%s:%d", *metricsAddress, *metricsPort)}
		srv.Handler = mux

		g.Add(
			func() error {
				logger.Log("event", "listen", "address", *metricsAddress, "port", *metricsPort)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return err
				}

				return nil
			},
			func(error) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			},
		)
	}

	{
		// Tracing with jaeger
		jexporter, err := jaeger.NewExporter(jaeger.Options{
			AgentEndpoint: *jaegerAgentEndpoint,
			Process: jaeger.Process{
				ServiceName: "outflux",
			},
		})

		if err != nil {
			return UsageError{err}
		}

		trace.RegisterExporter(jexporter)
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	}

	{
		logger := kitlog.With(logger, "component", "outstreams")

		ctx, cancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				if *runWatch {
					return watchAndProduce(ctx, logger, watchPaths, instrumented)
				}

				return produceAll(ctx, instrumented)
			},
			func(error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// buildSources populates a source registry from the Sources block. An absent
// block means an empty registry, which outstreams surface themselves when
// resolving their source. Returns the files behind the sources, for watch
// mode.
func buildSources(logger kitlog.Logger, root *xmltree.Node) (*source.Registry, []string, error) {
	registry, _ := source.NewRegistry()

	block := xmltree.FindPath(root, "Sources")
	if block == nil {
		return registry, nil, nil
	}

	var watchPaths []string
	for _, node := range block.Elements() {
		switch node.Tag {
		case "CSV":
			name, _ := node.AttrValue("name")
			filename, _ := node.AttrValue("filename")

			set, err := source.NewCSV(logger, source.CSVOptions{Name: name, Filename: filename})
			if err != nil {
				return nil, nil, errors.Wrapf(err, "failed to build source %s", name)
			}

			if err := registry.Add(set); err != nil {
				return nil, nil, err
			}

			watchPaths = append(watchPaths, set.Filename())

		default:
			return nil, nil, UsageError{errors.Errorf("unsupported source type: %s", node.Tag)}
		}
	}

	return registry, watchPaths, nil
}

func produceAll(ctx context.Context, entities []outstream.Entity) error {
	for _, entity := range entities {
		if err := entity.AddOutput(ctx); err != nil {
			return errors.Wrapf(err, "failed to produce output %s", entity.Name())
		}
	}

	return nil
}

// watchAndProduce produces outputs once, then re-produces them whenever a
// source file is rewritten. It only returns on cancellation or failure.
func watchAndProduce(ctx context.Context, logger kitlog.Logger, watchPaths []string, entities []outstream.Entity) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, path := range watchPaths {
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
	}

	if err := produceAll(ctx, entities); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			logger.Log("event", "source_changed", "path", event.Name, "msg", "re-producing outputs")
			if err := produceAll(ctx, entities); err != nil {
				return err
			}

		case err := <-watcher.Errors:
			return errors.Wrap(err, "file watcher failed")
		}
	}
}
