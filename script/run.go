package script

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/pistonwindow/audio"
	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/orion"
)

type Options struct {
	Window glimpse.Settings

	// Events configures the ticker, orion.DefaultEventSettings if nil.
	Events *orion.EventSettings

	// Functions are registered in addition to the builtin host functions
	// and may replace them.
	Functions map[string]HostFunc

	// Loader defaults to FileLoader
	Loader Loader

	// AfterRun is called with the session after the script finished,
	// before the session is torn down.
	AfterRun func(s *Session)
}

// DefaultOptions opens a 512x512 window titled "piston" that closes on
// escape and uses 4x msaa.
func DefaultOptions() Options {
	return Options{
		Window: glimpse.Settings{
			Title:     "piston",
			Size:      glimpse.Size{Width: 512, Height: 512},
			ExitOnEsc: true,
			Samples:   4,
		},
	}
}

func (o Options) Validate() error {
	if err := o.Window.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("window settings: %w", err)
	}

	if o.Events != nil {
		if err := o.Events.Validate(); err != nil {
			return fmt.Errorf("event settings: %w", err)
		}
	}

	return nil
}

// Run opens a window, runs the script file against it and tears
// everything down again, also if the script fails.
func Run(file string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	window, err := orion.New(orion.Settings{
		Window: opts.Window,
		Events: opts.Events,
	})

	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	textures, err := window.CreateTextureContext()
	if err != nil {
		window.Close()
		return fmt.Errorf("create texture context: %w", err)
	}

	session, err := NewSession(window, Backends{
		Textures: textures,
		Audio:    audio.NewManager(),
		Loader:   opts.Loader,
	})

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	defer session.Close()

	if err := session.LoadBuiltinFonts(); err != nil {
		return err
	}

	for name, fn := range opts.Functions {
		session.Register(name, fn)
	}

	slog.Info("Running script", slog.String("file", file))

	if err := session.RunFile(file); err != nil {
		return fmt.Errorf("run %q: %w", file, err)
	}

	if opts.AfterRun != nil {
		opts.AfterRun(session)
	}

	return nil
}
