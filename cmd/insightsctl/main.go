package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-insights/components/dashboard"
	"github.com/goliatone/go-insights/pkg/fakestore"
)

type cli struct {
	Config   string `type:"path" env:"INSIGHTS_CONFIG" help:"Path to the insights YAML config (defaults are used when omitted)."`
	EnvFile  string `name:"env-file" default:".env" help:"Dotenv file loaded before flags are resolved."`
	LogLevel string `name:"log-level" env:"INSIGHTS_LOG_LEVEL" default:"info" enum:"trace,debug,info,warn,error" help:"Log level."`
	LogJSON  bool   `name:"log-json" env:"INSIGHTS_LOG_JSON" help:"Emit JSON log lines."`
	Offline  bool   `env:"INSIGHTS_OFFLINE" help:"Serve built-in sample users instead of calling the upstream API."`

	Serve  serveCmd  `cmd:"" help:"Serve the insights JSON API and event stream."`
	Export exportCmd `cmd:"" help:"Export a table view to CSV or PDF."`
	Table  tableCmd  `cmd:"" help:"Print a table view to the terminal."`
	Init   initCmd   `cmd:"" help:"Write a config file populated with the defaults."`
}

// app carries the resolved globals into each command's Run.
type app struct {
	cfg     *dashboard.Config
	logger  *logrus.Logger
	offline bool
}

func main() {
	loadEnv(os.Args[1:])
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("insightsctl"),
		kong.Description("Analytics dashboard sessions, tables, and exports."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	a, err := root.app()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(a))
}

// loadEnv reads the dotenv file before kong resolves env-backed flags.
func loadEnv(args []string) {
	path := ".env"
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			path = args[i+1]
		} else if value, ok := strings.CutPrefix(arg, "--env-file="); ok {
			path = value
		}
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "insightsctl: load %s: %v\n", path, err)
	}
}

func (c *cli) app() (*app, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("insightsctl: %w", err)
	}
	logger.SetLevel(level)
	if c.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	cfg := dashboard.DefaultConfig()
	loaded := &cfg
	if c.Config != "" {
		loaded, err = dashboard.ReadConfig(c.Config)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", loaded.Path).Debug("insightsctl: config loaded")
	}
	return &app{cfg: loaded, logger: logger, offline: c.Offline}, nil
}

func (a *app) source() (dashboard.UserSource, error) {
	if a.offline {
		return fakestore.NewMockClient(fakestore.SampleUsers()...), nil
	}
	client, err := fakestore.NewFromConfig(a.cfg.Source)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// mountOnce mounts a single session without the metric simulation, for one-shot commands.
func (a *app) mountOnce(ctx context.Context) (*dashboard.Service, *dashboard.Session, error) {
	source, err := a.source()
	if err != nil {
		return nil, nil, err
	}
	service := dashboard.NewService(dashboard.Options{
		Source:            source,
		Config:            a.cfg,
		Logger:            a.logger,
		Telemetry:         dashboard.NewLogTelemetry(a.logger),
		DisableSimulation: true,
	})
	session, err := service.Mount(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := session.FetchError(); err != nil {
		service.Close(ctx)
		return nil, nil, fmt.Errorf("insightsctl: fetch users: %w", err)
	}
	return service, session, nil
}

type initCmd struct {
	Out       string `arg:"" type:"path" default:"insights.yaml" help:"Destination file."`
	Overwrite bool   `help:"Replace an existing file."`
}

func (cmd *initCmd) Run(_ context.Context, a *app) error {
	if _, err := os.Stat(cmd.Out); err == nil && !cmd.Overwrite {
		return fmt.Errorf("insightsctl: %s already exists (use --overwrite to replace)", cmd.Out)
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Out), 0o755); err != nil {
		return fmt.Errorf("insightsctl: mkdir %s: %w", filepath.Dir(cmd.Out), err)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("insightsctl: create config %s: %w", cmd.Out, err)
	}
	defer file.Close()

	cfg := dashboard.DefaultConfig()
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("insightsctl: write config: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote default config to %s\n", cmd.Out)
	return nil
}
