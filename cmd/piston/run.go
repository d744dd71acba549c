package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/script"
	"github.com/pkg/profile"
	"github.com/urfave/cli"
)

func runScript(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing script file argument")
	}

	if dir := ctx.String("profile"); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
	}

	events := orion.DefaultEventSettings()
	events.UPS = ctx.Int("ups")
	events.MaxFPS = ctx.Int("max-fps")
	events.Lazy = ctx.Bool("lazy")
	events.BenchMode = ctx.Bool("bench")

	opts := script.DefaultOptions()
	opts.Window.Title = ctx.String("title")
	opts.Window.Size = glimpse.Size{
		Width:  uint32(max(0, ctx.Int("width"))),
		Height: uint32(max(0, ctx.Int("height"))),
	}
	opts.Window.NoVSync = ctx.Bool("no-vsync")
	opts.Events = &events

	if ctx.Bool("stats") || events.BenchMode {
		opts.AfterRun = func(s *script.Session) {
			displayFrameStats(s.Window().Stats())
		}
	}

	return script.Run(ctx.Args().First(), opts)
}

func displayFrameStats(stats orion.FrameTimes) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frames", "FPS", "Average", "Max"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.FrameCount),
		fmt.Sprintf("%.1f", stats.FPS()),
		stats.AverageDuration.String(),
		stats.MaxDuration.String(),
	})

	table.Render()
	fmt.Printf("frame statistics\n%s", buf.String())
}
