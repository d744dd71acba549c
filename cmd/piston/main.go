package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "piston"
	app.Usage = "run lua scripts in a window"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "run a lua script",
			Description: `
Open a window and run the script. The script pumps events using next_event()
and draws on render events using draw(list). The window closes on escape.`,
			ArgsUsage: "script.lua",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "window width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "window height",
				},
				cli.StringFlag{
					Name:  "title",
					Value: "piston",
					Usage: "window title",
				},
				cli.IntFlag{
					Name:  "ups",
					Value: 120,
					Usage: "updates per second, 0 waits for input",
				},
				cli.IntFlag{
					Name:  "max-fps",
					Value: 60,
					Usage: "maximum frames per second",
				},
				cli.BoolFlag{
					Name:  "lazy",
					Usage: "only render after input",
				},
				cli.BoolFlag{
					Name:  "bench",
					Usage: "run ticks back to back without waiting",
				},
				cli.BoolFlag{
					Name:  "no-vsync",
					Usage: "disable vertical sync",
				},
				cli.StringFlag{
					Name:  "profile",
					Usage: "write a cpu profile into this directory",
				},
				cli.BoolFlag{
					Name:  "stats",
					Usage: "print frame statistics after the script finished",
				},
			},
			Action: runScript,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
