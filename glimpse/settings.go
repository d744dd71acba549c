package glimpse

import (
	"errors"
	"fmt"
)

var ErrInvalidSize = errors.New("window size must not be empty")

// Settings configure a new window. The zero value of every field is
// replaced with a default in WithDefaults.
type Settings struct {
	Title string
	Size  Size

	ExitOnEsc bool

	// NoAutomaticClose keeps the window open when the user requests
	// to close it. A Close input is still emitted.
	NoAutomaticClose bool

	// Samples used for multisample anti aliasing, zero disables msaa.
	Samples uint32

	NoVSync     bool
	NoResize    bool
	NoDecorated bool
}

func (s Settings) WithDefaults() Settings {
	if s.Title == "" {
		s.Title = "piston"
	}

	if s.Size == (Size{}) {
		s.Size = Size{Width: 640, Height: 480}
	}

	return s
}

func (s Settings) Validate() error {
	if s.Size.IsEmpty() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Size.Width, s.Size.Height)
	}

	switch s.Samples {
	case 0, 1, 4:
	default:
		return fmt.Errorf("unsupported sample count %d", s.Samples)
	}

	return nil
}
