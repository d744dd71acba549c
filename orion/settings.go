package orion

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSettings = errors.New("invalid event settings")

// EventSettings configure the pacing of Events.
type EventSettings struct {
	// UPS is the number of updates per second. Zero disables updates,
	// frames are then paced by MaxFPS alone.
	UPS int

	// MaxFPS limits the number of frames per second, zero does not limit.
	MaxFPS int

	// SwapBuffers makes the ticker swap the window buffers after each render.
	SwapBuffers bool

	// BenchMode disables real time pacing and ignores input. Events are
	// produced back to back as if every frame took exactly 1/MaxFPS.
	BenchMode bool

	// Lazy waits for input before rendering the next frame.
	Lazy bool

	// UPSReset is the number of missed updates after which missed
	// updates are skipped instead of being caught up. Zero disables.
	UPSReset int
}

// DefaultEventSettings are the settings used by New.
func DefaultEventSettings() EventSettings {
	return EventSettings{
		UPS:         120,
		MaxFPS:      60,
		SwapBuffers: true,
		UPSReset:    2,
	}
}

func (s EventSettings) Validate() error {
	const maxRate = int(time.Second)

	switch {
	case s.UPS < 0:
		return fmt.Errorf("%w: negative update rate %d", ErrInvalidSettings, s.UPS)

	case s.MaxFPS < 0:
		return fmt.Errorf("%w: negative frame rate %d", ErrInvalidSettings, s.MaxFPS)

	case s.UPSReset < 0:
		return fmt.Errorf("%w: negative update reset %d", ErrInvalidSettings, s.UPSReset)

	case s.UPS > maxRate || s.MaxFPS > maxRate:
		return fmt.Errorf("%w: rate above %d per second", ErrInvalidSettings, maxRate)

	case s.BenchMode && s.MaxFPS == 0:
		return fmt.Errorf("%w: bench mode requires a frame rate", ErrInvalidSettings)
	}

	return nil
}

func (s EventSettings) updateInterval() time.Duration {
	return interval(s.UPS)
}

func (s EventSettings) frameInterval() time.Duration {
	return interval(s.MaxFPS)
}

func interval(rate int) time.Duration {
	if rate <= 0 {
		return 0
	}

	return time.Second / time.Duration(rate)
}
