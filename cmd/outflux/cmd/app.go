package cmd

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin"
	sentry "github.com/getsentry/sentry-go"
	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"
)

var logger kitlog.Logger

var (
	app = kingpin.New("outflux", "Stream simulation results into output artifacts").Version(versionStanza())

	// Global flags
	debug               = app.Flag("debug", "Enable debug logging").Default("false").Bool()
	metricsAddress      = app.Flag("metrics-address", "Address to bind HTTP metrics listener").Default("127.0.0.1").String()
	metricsPort         = app.Flag("metrics-port", "Port to bind HTTP metrics listener").Default("9526").Uint16()
	jaegerAgentEndpoint = app.Flag("jaeger-agent-endpoint", "Endpoint for Jaeger agent").Default("localhost:6831").String()
	sentryDSN           = app.Flag("sentry-dsn", "DSN for reporting errors to Sentry").Envar("SENTRY_DSN").String()

	runCommand = app.Command("run", "Produce outputs from a simulation configuration")
	runConfig  = runCommand.Arg("config", "XML configuration file").Required().ExistingFile()
	runDryRun  = runCommand.Flag("dry-run", "Build outstreams and print their parameters, producing nothing").Default("false").Bool()
	runWatch   = runCommand.Flag("watch", "Re-run outputs whenever a source file changes").Default("false").Bool()

	fmtCommand = app.Command("fmt", "Pretty-print an XML configuration file")
	fmtFile    = fmtCommand.Arg("file", "XML configuration file").Required().ExistingFile()
	fmtWrite   = fmtCommand.Flag("write", "Rewrite the file in place instead of printing").Short('w').Default("false").Bool()

	queryCommand = app.Command("query", "Print the configuration subtree at a path")
	queryFile    = queryCommand.Arg("file", "XML configuration file").Required().ExistingFile()
	queryPath    = queryCommand.Arg("path", "Pipe-delimited path below the root, eg. OutStreams|Print").Required().String()
)

// Set by goreleaser
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func versionStanza() string {
	return fmt.Sprintf(
		"outflux Version: %v\nGit SHA: %v\nGo Version: %v\nGo OS/Arch: %v/%v\nBuilt at: %v",
		Version, Commit, GoVersion, runtime.GOOS, runtime.GOARCH, Date,
	)
}

// SilentError should be returned when the command wants to skip all logging of the error
// it has encountered. It wraps no error content as we should never inspect it.
var SilentError = errors.New("silent error")

type UsageError struct {
	error
}

func Run() (err error) {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.AllowInfo())
	if *debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	}
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
	stdlog.SetOutput(kitlog.NewStdlibAdapter(logger))

	if *sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: *sentryDSN, Release: Version}); err != nil {
			return UsageError{err}
		}
	}

	// Setup an error handler to log and print usage
	defer func() {
		var usageErr UsageError
		switch {
		// Do nothing if no error
		case err == nil:
			return
		// Suppress silent errors
		case errors.Is(err, SilentError):
			return
		// If we're a usage error, unwrap it and print out usage before returning
		case errors.As(err, &usageErr):
			context, _ := app.ParseContext(os.Args[1:])
			app.UsageForContext(context)
			fmt.Fprintf(os.Stderr, "error: %s\n", usageErr.Error())

			err = usageErr.error
			return
		// Otherwise we probably want to log our error
		default:
			if *sentryDSN != "" {
				sentry.CaptureException(err)
				sentry.Flush(2 * time.Second)
			}

			logger.Log("event", "error", "error", err, "msg", "exiting with error")
		}
	}()

	switch command {
	case fmtCommand.FullCommand():
		return runFmt(*fmtFile, *fmtWrite)

	case queryCommand.FullCommand():
		return runQuery(*queryFile, *queryPath)

	case runCommand.FullCommand():
		// This is the root context for the application. Once terminated, everything we
		// have started should also finish.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Stage our shutdown to first request termination, then cancel contexts if
		// downstream workers haven't responded.
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		shutdown := make(chan struct{})

		go func() {
			<-sigc
			close(shutdown)
			select {
			case <-time.After(30 * time.Second):
			case <-sigc:
			}
			cancel()
		}()

		return runStream(ctx, shutdown, *runConfig)
	}

	return UsageError{fmt.Errorf("unsupported command")}
}
