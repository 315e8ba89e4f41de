package main

import (
	"fmt"
	"log/slog"
	"os"

	"pngbridge/convert"
	"pngbridge/inspect"
	"pngbridge/parallel"

	"github.com/alecthomas/kong"
)

type cli struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	Workers  int    `help:"Number of parallel workers, 0 for one per CPU" default:"0"`

	Convert convert.CLICmd `cmd:"" help:"Convert a folder of images to PNG, BMP or TIFF"`
	Inspect inspect.CLICmd `cmd:"" help:"Report size, pixel format, palette and offsets of PNG images"`
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("pngbridge"),
		kong.Description("PNG tools for palette-indexed and offset-carrying images."),
		kong.UsageOnError(),
	)

	logger := newLogger(c.LogLevel)
	slog.SetDefault(logger)
	logger.Debug("running", "command", kctx.Command())

	pool := parallel.Start(c.Workers, logger)
	logger.Debug("workers started", "workers", pool.Workers)
	err := kctx.Run(pool.Do, pool.Wait, logger)
	pool.Wait(true)
	if n := pool.Panicked(); n > 0 && err == nil {
		err = fmt.Errorf("%d tasks panicked", n)
	}
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
