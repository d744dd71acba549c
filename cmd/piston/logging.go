package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

var level = new(slog.LevelVar)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

func setupLogging(ctx *cli.Context) {
	level.Set(slog.LevelWarn)

	if ctx.GlobalBool("v") {
		level.Set(slog.LevelInfo)
	}

	if ctx.GlobalBool("vv") {
		level.Set(slog.LevelDebug)
	}

	slog.SetDefault(logger)
}
