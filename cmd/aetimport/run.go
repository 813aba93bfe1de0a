package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/footage"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/factory"
	"github.com/gfox0104/AetPlugin/internal/importer"
	"github.com/gfox0104/AetPlugin/internal/influx"
	"github.com/gfox0104/AetPlugin/internal/logging"
	intOtel "github.com/gfox0104/AetPlugin/internal/otel"
	"github.com/gfox0104/AetPlugin/internal/scenefile"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const shutdownTTL = 5 * time.Second

// app holds the services of one command run.
type app struct {
	fs       afero.Fs
	logs     *logging.SlogManager
	logger   *slog.Logger
	current  *logging.CurrentFile
	otel     *intOtel.Provider
	backend  host.Backend
	hostType string
	influx   *influx.Manager
	assets   string
	logFile  io.Closer
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", ".", "directory containing "+config.ConfigFileName)
	fs.String("assets", "", "directory searched for footage images (default: the scene file's directory)")
	fs.String("host", "", "host backend: memory, sqlite, postgres or websocket")
	fs.String("out", "", "output directory of the memory host")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.Bool("version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <scene file>...\n", AppName)
		fs.PrintDefaults()
	}
	return fs
}

// bindFlags makes explicitly set flags override the config file.
func bindFlags(fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"host.type":             "host",
		"host.memory.outputDir": "out",
		"logLevel":              "log-level",
		"assets.dir":            "assets",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func run(args []string) int {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if v, _ := flags.GetBool("version"); v {
		fmt.Printf("%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
		return exitOK
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}

	configDir, _ := flags.GetString("config")
	configErr := config.Load(configDir)
	if err := bindFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	a := &app{fs: afero.NewOsFs(), current: &logging.CurrentFile{}}
	a.setupLogging()
	defer a.shutdown()

	if configErr != nil {
		a.logger.Error("Failed to load config", "error", configErr)
		return exitFailed
	}
	a.logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate)

	if err := a.setupHost(); err != nil {
		a.logger.Error("Failed to set up host", "error", err)
		return exitFailed
	}
	a.setupInflux()

	failed := 0
	for _, path := range flags.Args() {
		if err := a.importFile(path); err != nil {
			a.logger.Error("Import failed", "path", path, "error", err)
			failed++
		}
	}
	if failed > 0 {
		a.logger.Warn("Some scene files failed to import", "failed", failed, "total", flags.NArg())
		return exitFailed
	}
	return exitOK
}

// setupLogging logs to the session file in logsDir, or to the console when
// the file cannot be created, and attaches the OTel bridge when enabled.
func (a *app) setupLogging() {
	a.logs = logging.NewSlogManager()
	a.logs.SetContextProvider(a.current.Provider())
	a.logs.Setup(nil, viper.GetString("logLevel"), nil)
	a.logger = a.logs.Logger()

	var file *os.File
	logsDir := viper.GetString("logsDir")
	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			a.logger.Warn("Failed to create logs directory", "error", err, "path", logsDir)
		} else {
			path := logging.LogFilePath(logsDir, AppName, SessionStartTime)
			file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				a.logger.Warn("Failed to create/open log file", "error", err, "path", path)
				file = nil
			} else {
				a.logFile = file
			}
		}
	}

	otelCfg := config.GetOTelConfig()
	var logWriter io.Writer = os.Stdout
	if file != nil {
		logWriter = file
	}
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
	} else {
		a.otel = provider
	}

	var otelLogProvider *sdklog.LoggerProvider
	if a.otel != nil {
		otelLogProvider = a.otel.LoggerProvider()
	}
	var out io.Writer
	if file != nil {
		out = file
	}
	a.logs.Setup(out, viper.GetString("logLevel"), otelLogProvider)
	a.logger = a.logs.Logger()
	if file != nil {
		a.logger.Info("Logging to file", "path", file.Name())
	}
}

func (a *app) setupHost() error {
	hc := config.GetHostConfig()
	backend, err := factory.New(hc, a.logger)
	if err != nil {
		return err
	}
	a.backend = backend
	a.hostType = hc.Type
	a.assets = viper.GetString("assets.dir")
	a.logger.Info("Host backend initialized", "type", hc.Type)
	return nil
}

// setupInflux connects the report publisher. Reports are optional, so a
// failure only disables them.
func (a *app) setupInflux() {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return
	}
	m := influx.NewManager(logging.NewZerolog(a.logger, "influx"), cfg)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTTL)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		a.logger.Warn("Import reports disabled", "error", err)
		_ = m.Close()
		return
	}
	a.influx = m
}

func (a *app) importFile(path string) error {
	a.current.Set(path)
	defer a.current.Set("")

	if v := scenefile.Verify(path); v != scenefile.Valid {
		return fmt.Errorf("not an importable scene file: %s", v)
	}

	set, err := scenefile.Load(a.fs, path)
	if err != nil {
		return err
	}

	assetsDir := a.assets
	if assetsDir == "" {
		assetsDir = filepath.Dir(path)
	}
	ac := config.GetAssetsConfig()
	lister := &footage.Lister{Fs: a.fs, Prefix: ac.Prefix, Extension: ac.Extension}
	assets, err := lister.List(assetsDir)
	if err != nil {
		a.logger.Warn("Failed to list assets, footage resolves to placeholders", "error", err)
	}

	if err := a.backend.BeginProject(host.ProjectInfo{
		Name:       set.Name,
		SourcePath: path,
		StartTime:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to begin project: %w", err)
	}

	opts := []importer.Option{importer.WithAssets(assets)}
	if a.otel != nil {
		opts = append(opts, importer.WithMeter(a.otel.Meter(AppName)))
	}
	report, err := importer.New(a.backend, a.logger, opts...).Import(set)
	if err != nil {
		return err
	}

	if err := a.backend.EndProject(); err != nil {
		return fmt.Errorf("failed to end project: %w", err)
	}
	if exp, ok := a.backend.(host.Exportable); ok && exp.ExportedFilePath() != "" {
		a.logger.Info("Project exported", "path", exp.ExportedFilePath())
	}

	if a.influx != nil {
		if err := a.influx.PublishReport(report, a.hostType, time.Now()); err != nil {
			a.logger.Warn("Failed to publish import report", "error", err)
		}
	}
	return nil
}

func (a *app) shutdown() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("Failed to close host", "error", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTTL)
	defer cancel()
	if err := a.logs.Flush(ctx); err != nil {
		a.logger.Warn("Failed to flush logs", "error", err)
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
