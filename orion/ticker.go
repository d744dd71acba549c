package orion

import (
	"fmt"
	"time"

	"github.com/oliverbestmann/pistonwindow/glimpse"
)

// Clock provides the current time to Events.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type tickerState uint8

const (
	stateRender tickerState = iota
	stateSwapBuffers
	stateUpdateLoop
	stateHandleEvents
	stateUpdate
)

// Events turns window input and the passing of time into a stream of
// events. Updates are emitted at a fixed rate, renders at most at MaxFPS.
type Events struct {
	settings EventSettings
	clock    Clock

	state tickerState

	lastUpdate time.Time
	lastFrame  time.Time

	// true if an Idle event was emitted since the last tick
	idle bool

	// true if we waited for input since the last frame in lazy mode
	waited bool
}

func NewEvents(settings EventSettings) (*Events, error) {
	return NewEventsWithClock(settings, systemClock{})
}

func NewEventsWithClock(settings EventSettings, clock Clock) (*Events, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	now := clock.Now()

	e := &Events{
		settings:   settings,
		clock:      clock,
		state:      stateRender,
		lastUpdate: now,
		lastFrame:  now,
	}

	return e, nil
}

func (e *Events) Settings() EventSettings {
	return e.settings
}

func (e *Events) SetSettings(settings EventSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	e.settings = settings
	return nil
}

// Next returns the next event. It returns false once the window should close.
func (e *Events) Next(win glimpse.Window) (Event, bool) {
	if win.ShouldClose() {
		return nil, false
	}

	for {
		switch e.state {
		case stateRender:
			if e.settings.BenchMode {
				// pretend every frame took exactly the frame interval
				e.lastFrame = e.lastFrame.Add(e.settings.frameInterval())
			} else {
				e.lastFrame = e.clock.Now()
			}

			e.idle = false
			e.waited = false
			e.state = stateUpdateLoop

			size, drawSize := win.Size(), win.DrawSize()
			if size.IsEmpty() {
				// nothing to render into, e.g. a minimized window
				continue
			}

			e.state = stateSwapBuffers

			render := Render{
				ExtDt:      max(0, e.lastFrame.Sub(e.lastUpdate).Seconds()),
				WindowSize: size,
				DrawSize:   drawSize,
			}

			return render, true

		case stateSwapBuffers:
			if e.settings.SwapBuffers {
				win.SwapBuffers()
			}

			e.state = stateUpdateLoop
			return AfterRender{}, true

		case stateUpdateLoop:
			if event, ok := e.updateLoop(win); ok {
				return event, true
			}

		case stateHandleEvents:
			e.state = stateUpdate

			if !e.settings.BenchMode {
				if input, ok := win.PollEvent(); ok {
					// handle the update after all pending input
					e.state = stateHandleEvents
					return EventOf(input), true
				}
			}

		case stateUpdate:
			e.state = stateUpdateLoop
			e.idle = false

			step := e.settings.updateInterval()

			if !e.settings.BenchMode && e.settings.UPSReset > 0 {
				now := e.clock.Now()
				nextUpdate := e.lastUpdate.Add(step)

				// we are too far behind, skip the missed updates
				if now.Sub(nextUpdate) > step*time.Duration(e.settings.UPSReset) {
					e.lastUpdate = now.Add(-step)
				}
			}

			e.lastUpdate = e.lastUpdate.Add(step)

			return Update{Dt: step.Seconds()}, true
		}
	}
}

// updateLoop decides what comes next after a tick. It either returns
// an event or switches to another state.
func (e *Events) updateLoop(win glimpse.Window) (Event, bool) {
	if e.settings.BenchMode {
		if e.settings.UPS == 0 {
			e.state = stateRender
			return nil, false
		}

		nextFrame := e.lastFrame.Add(e.settings.frameInterval())
		nextUpdate := e.lastUpdate.Add(e.settings.updateInterval())

		if nextFrame.After(nextUpdate) {
			e.state = stateHandleEvents
		} else {
			e.state = stateRender
		}

		return nil, false
	}

	if e.settings.Lazy {
		if !e.waited {
			e.waited = true
			return EventOf(win.WaitEvent()), true
		}

		if input, ok := win.PollEvent(); ok {
			return EventOf(input), true
		}

		e.state = stateRender
		return nil, false
	}

	now := e.clock.Now()

	nextFrame := e.lastFrame.Add(e.settings.frameInterval())
	nextUpdate := e.lastUpdate.Add(e.settings.updateInterval())

	// without updates only the frame rate paces the loop
	nextEvent := nextFrame
	if e.settings.UPS > 0 && nextUpdate.Before(nextFrame) {
		nextEvent = nextUpdate
	}

	if nextEvent.After(now) {
		if input, ok := win.PollEvent(); ok {
			return EventOf(input), true
		}

		if !e.idle {
			e.idle = true
			return Idle{Dt: nextEvent.Sub(now).Seconds()}, true
		}

		if input, ok := win.WaitEventTimeout(nextEvent.Sub(now)); ok {
			return EventOf(input), true
		}

		return nil, false
	}

	if nextEvent.Equal(nextFrame) {
		e.state = stateRender
	} else {
		e.state = stateHandleEvents
	}

	return nil, false
}
