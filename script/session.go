// Package script runs lua scripts against an orion.Window. Scripts get
// host functions to pump events, draw, load images, fonts and textures
// and to play sounds and music.
package script

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/oliverbestmann/pistonwindow/audio"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/pulse"
	lua "github.com/yuin/gopher-lua"
)

var ErrSessionClosed = errors.New("session closed")

// Textures creates the gpu resources a script can use.
// pulse.TextureContext implements it.
type Textures interface {
	CreateTexture(img image.Image) (graphics.Texture, error)
	UpdateTexture(texture graphics.Texture, img image.Image) error
	LoadFont(path string) (graphics.GlyphCache, error)
	BuiltinFont(font pulse.BuiltinFont) (graphics.GlyphCache, error)
}

// AudioManager provides the tracks sounds and music are played on.
// audio.Manager implements it.
type AudioManager interface {
	MainTrack() audio.Track
	AddSubTrack() (audio.Track, error)
	Close()
}

// Loader reads sounds and music from storage.
type Loader interface {
	LoadSound(path string) (audio.StaticSoundData, error)

	// OpenMusic opens a new stream each time it is called.
	OpenMusic(path string) (audio.Sound, error)
}

// FileLoader loads wav and mp3 files from the filesystem.
type FileLoader struct{}

func (FileLoader) LoadSound(path string) (audio.StaticSoundData, error) {
	return audio.LoadStaticSound(path)
}

func (FileLoader) OpenMusic(path string) (audio.Sound, error) {
	return audio.OpenStream(path)
}

// Backends are the collaborators of a Session besides the window.
type Backends struct {
	Textures Textures
	Audio    AudioManager

	// Loader defaults to FileLoader
	Loader Loader
}

type soundEntry struct {
	file string
	data *audio.StaticSoundData
}

type musicEntry struct {
	file   string
	handle audio.Handle
}

type closer struct {
	name string
	fn   func()
}

// Session holds everything a running script can reach: the window, the
// current event and the resource tables. Ids handed to the script are
// indices into the tables and stay valid until the session is closed.
type Session struct {
	window *orion.Window
	event  orion.Event

	fonts     []graphics.GlyphCache
	fontNames []string

	images     []image.Image
	imageNames []string

	textureContext Textures
	textures       []graphics.Texture

	// textures and fonts handed out as objects, outside of the tables
	objects []any

	audio  AudioManager
	music  audio.Track
	loader Loader

	sounds   map[string]*soundEntry
	musicMap map[string]*musicEntry

	lua *lua.LState

	// teardown steps in order of installation
	closers []closer
	closed  bool
}

// NewSession takes ownership of the window and the backends. They are
// released by Close, in reverse order of installation.
func NewSession(window *orion.Window, backends Backends) (s *Session, err error) {
	if backends.Textures == nil {
		return nil, errors.New("session needs a texture context")
	}

	if backends.Audio == nil {
		return nil, errors.New("session needs an audio manager")
	}

	if backends.Loader == nil {
		backends.Loader = FileLoader{}
	}

	s = &Session{}

	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.install("window", func() {
		window.Close()
		s.window = nil
	})
	s.window = window

	s.install("event", func() { s.event = nil })

	s.install("fonts", func() {
		releaseAll(s.fonts)
		s.fonts = nil
	})
	s.install("font names", func() { s.fontNames = nil })
	s.install("images", func() { s.images = nil })
	s.install("image names", func() { s.imageNames = nil })

	s.install("texture context", func() { s.textureContext = nil })
	s.textureContext = backends.Textures

	s.install("textures", func() {
		releaseAll(s.objects)
		releaseAll(s.textures)
		s.objects = nil
		s.textures = nil
	})

	s.install("audio manager", func() {
		s.audio.Close()
		s.audio = nil
	})
	s.audio = backends.Audio
	s.loader = backends.Loader

	music, err := s.audio.AddSubTrack()
	if err != nil {
		return nil, fmt.Errorf("create music track: %w", err)
	}

	s.install("music track", func() { s.music = nil })
	s.music = music

	s.install("sounds", func() { s.sounds = nil })
	s.sounds = map[string]*soundEntry{}

	s.install("music", func() { s.musicMap = nil })
	s.musicMap = map[string]*musicEntry{}

	s.lua = lua.NewState()
	s.install("lua", func() {
		s.lua.Close()
		s.lua = nil
	})

	s.registerHostFunctions()

	return s, nil
}

// releaseAll frees gpu resources of table entries while the device
// is still alive.
func releaseAll[T any](values []T) {
	for _, value := range values {
		if r, ok := any(value).(pulse.Releaser); ok {
			r.Release()
		}
	}
}

func (s *Session) install(name string, fn func()) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Close tears down the session in reverse order of installation. It is
// safe to call Close multiple times.
func (s *Session) Close() {
	if s.closed {
		return
	}

	s.closed = true

	for idx := len(s.closers) - 1; idx >= 0; idx-- {
		c := s.closers[idx]
		slog.Debug("Tear down session", slog.String("resource", c.name))
		c.fn()
	}

	s.closers = nil
}

// Window returns the window driven by the session, or nil once closed.
func (s *Session) Window() *orion.Window {
	return s.window
}

// Event returns the current event, nil before the first event and after
// the event stream ended.
func (s *Session) Event() orion.Event {
	return s.event
}

// AddFont appends glyphs to the font table and returns its id.
func (s *Session) AddFont(name string, glyphs graphics.GlyphCache) int {
	s.fonts = append(s.fonts, glyphs)
	s.fontNames = append(s.fontNames, name)
	return len(s.fonts) - 1
}

// AddImage appends img to the image table and returns its id.
func (s *Session) AddImage(name string, img image.Image) int {
	s.images = append(s.images, img)
	s.imageNames = append(s.imageNames, name)
	return len(s.images) - 1
}

// LoadBuiltinFonts adds the fonts compiled into the binary to the font table.
func (s *Session) LoadBuiltinFonts() error {
	if s.closed {
		return ErrSessionClosed
	}

	builtins := []struct {
		name string
		font pulse.BuiltinFont
	}{
		{"Go-Regular", pulse.FontRegular},
		{"Go-Mono", pulse.FontMono},
	}

	for _, builtin := range builtins {
		glyphs, err := s.textureContext.BuiltinFont(builtin.font)
		if err != nil {
			return fmt.Errorf("load builtin font %q: %w", builtin.name, err)
		}

		s.AddFont(builtin.name, glyphs)
	}

	return nil
}

// NextEvent advances the window and records the new current event.
func (s *Session) NextEvent() (bool, error) {
	if s.closed {
		return false, ErrSessionClosed
	}

	event, ok := s.window.Next()
	if !ok {
		s.event = nil
		return false, nil
	}

	s.event = event
	return true, nil
}
