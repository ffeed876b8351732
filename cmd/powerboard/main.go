// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the powerboard dashboard service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/wneessen/powerboard/internal/config"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/presenter"
	"github.com/wneessen/powerboard/internal/service"
	"github.com/wneessen/powerboard/internal/weather"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cli struct {
	Config  string           `help:"Path to the config file." short:"c" type:"path"`
	EnvFile string           `help:"Path to a .env file loaded before the config." name:"env-file" type:"path"`
	Version kong.VersionFlag `help:"Print version information and exit."`

	Serve  serveCmd  `cmd:"" default:"1" help:"Run the dashboard HTTP server (default)."`
	Render renderCmd `cmd:"" help:"Render the weather card and the power overview once and exit."`
	Adapt  adaptCmd  `cmd:"" help:"Convert a WeatherAPI.com forecast response into a weather record."`
}

type runContext struct {
	ctx    context.Context
	config *config.Config
	logger *logger.Logger
}

type serveCmd struct{}

func (c *serveCmd) Run(rc *runContext) error {
	serv, err := service.New(rc.config, rc.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize powerboard service: %w", err)
	}

	rc.logger.Info("starting powerboard service", slog.String("version", version),
		slog.String("commit", commit), slog.String("date", date),
		slog.String("address", rc.config.Server.Address))
	if err = serv.Run(rc.ctx); err != nil {
		return fmt.Errorf("failed to run powerboard service: %w", err)
	}
	rc.logger.Info("shutting down powerboard service")
	return nil
}

type renderCmd struct{}

func (c *renderCmd) Run(rc *runContext) error {
	serv, err := service.New(rc.config, rc.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize powerboard service: %w", err)
	}
	defer func() {
		if err := serv.Close(); err != nil {
			rc.logger.Error("failed to close powerboard service", logger.Err(err))
		}
	}()
	return serv.Render(rc.ctx, os.Stdout)
}

type adaptCmd struct {
	File string `arg:"" help:"Forecast response to read." type:"existingfile"`
	JSON bool   `help:"Print the record as JSON instead of the card template."`
}

func (c *adaptCmd) Run(rc *runContext) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	record, err := weather.AdaptExternalPayload(raw)
	if err != nil {
		return fmt.Errorf("failed to adapt payload: %w", err)
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	pres, err := presenter.New(rc.config)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	card, err := pres.Card(pres.BuildCardContext(record, time.Now()))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, card)
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	var args cli
	kctx := kong.Parse(&args,
		kong.Name("powerboard"),
		kong.Description("Weather card and power production dashboard."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)},
	)

	if args.EnvFile != "" {
		if err := godotenv.Load(args.EnvFile); err != nil {
			log.Error("failed to load env file", logger.Err(err))
			os.Exit(1)
		}
	}

	conf, err := loadConfig(args.Config)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log = logger.New(conf.LogLevel)
	if err = kctx.Run(&runContext{ctx: ctx, config: conf, logger: log}); err != nil {
		log.Error("command failed", slog.String("command", kctx.Command()), logger.Err(err))
		os.Exit(1)
	}
}

// loadConfig reads the given config file. Without one, the default location is tried before
// falling back to defaults and environment variables.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "powerboard", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
