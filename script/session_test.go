package script

import (
	"errors"
	"fmt"
	"image"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/oliverbestmann/pistonwindow/audio"
	"github.com/oliverbestmann/pistonwindow/audio/audiotest"
	"github.com/oliverbestmann/pistonwindow/glimpse"
	"github.com/oliverbestmann/pistonwindow/graphics"
	"github.com/oliverbestmann/pistonwindow/orion"
	"github.com/oliverbestmann/pistonwindow/orion/oriontest"
	"github.com/oliverbestmann/pistonwindow/pulse"
)

type fakeGlyphs struct {
	name string

	released  bool
	onRelease func()
}

func (g *fakeGlyphs) Release() {
	g.released = true

	if g.onRelease != nil {
		g.onRelease()
	}
}

func (g *fakeGlyphs) Width(size uint32, text string) (float32, error) {
	return float32(len(text)) * float32(size) / 2, nil
}

type fakeTextures struct {
	created []image.Image

	createErr error
	updateErr error
	fontErr   error
}

func (f *fakeTextures) CreateTexture(img image.Image) (graphics.Texture, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.created = append(f.created, img)

	bounds := img.Bounds()
	return &oriontest.FakeTexture{W: uint32(bounds.Dx()), H: uint32(bounds.Dy())}, nil
}

func (f *fakeTextures) UpdateTexture(texture graphics.Texture, img image.Image) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	texture.(*oriontest.FakeTexture).Updates++
	return nil
}

func (f *fakeTextures) LoadFont(path string) (graphics.GlyphCache, error) {
	if f.fontErr != nil {
		return nil, f.fontErr
	}

	return &fakeGlyphs{name: path}, nil
}

func (f *fakeTextures) BuiltinFont(font pulse.BuiltinFont) (graphics.GlyphCache, error) {
	return &fakeGlyphs{name: fmt.Sprintf("builtin-%d", font)}, nil
}

type fakeLoader struct {
	loads map[string]int
	opens []string

	// duration of every sound and music
	duration time.Duration
}

func (l *fakeLoader) data() audio.StaticSoundData {
	return audio.StaticSoundData{
		Samples:    make([]audio.StereoSample, int(l.duration.Seconds()*1000)),
		SampleRate: 1000,
	}
}

func (l *fakeLoader) LoadSound(path string) (audio.StaticSoundData, error) {
	if strings.HasPrefix(path, "missing") {
		return audio.StaticSoundData{}, fmt.Errorf("open %q: %w", path, os.ErrNotExist)
	}

	l.loads[path]++
	return l.data(), nil
}

func (l *fakeLoader) OpenMusic(path string) (audio.Sound, error) {
	if strings.HasPrefix(path, "missing") {
		return nil, fmt.Errorf("open %q: %w", path, os.ErrNotExist)
	}

	l.opens = append(l.opens, path)
	return l.data(), nil
}

type testSession struct {
	*Session

	win      *oriontest.FakeWindow
	gpu      *oriontest.FakeGPU
	renderer *oriontest.FakeRenderer
	textures *fakeTextures
	audio    *audiotest.FakeManager
	loader   *fakeLoader
}

func newTestSession(t *testing.T) testSession {
	t.Helper()

	clock := oriontest.NewFakeClock()

	win := oriontest.NewFakeWindow(640, 480)
	win.Clock = clock

	events, err := orion.NewEventsWithClock(orion.DefaultEventSettings(), clock)
	if err != nil {
		t.Fatalf("NewEventsWithClock() = %v", err)
	}

	gpu := &oriontest.FakeGPU{}
	renderer := &oriontest.FakeRenderer{}

	window, err := orion.NewWithBackends(win, gpu, renderer, events)
	if err != nil {
		t.Fatalf("NewWithBackends() = %v", err)
	}

	ts := testSession{
		win:      win,
		gpu:      gpu,
		renderer: renderer,
		textures: &fakeTextures{},
		audio:    &audiotest.FakeManager{},
		loader:   &fakeLoader{loads: map[string]int{}, duration: time.Second},
	}

	ts.Session, err = NewSession(window, Backends{
		Textures: ts.textures,
		Audio:    ts.audio,
		Loader:   ts.loader,
	})

	if err != nil {
		t.Fatalf("NewSession() = %v", err)
	}

	t.Cleanup(ts.Close)

	return ts
}

func (ts testSession) musicTrack(t *testing.T) *audiotest.FakeTrack {
	t.Helper()

	if len(ts.audio.Subs) != 1 {
		t.Fatalf("expected one music track, got %d", len(ts.audio.Subs))
	}

	return ts.audio.Subs[0]
}

func TestNewSessionRequiresBackends(t *testing.T) {
	window, err := orion.NewWithBackends(oriontest.NewFakeWindow(64, 64), &oriontest.FakeGPU{}, &oriontest.FakeRenderer{}, mustEvents(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewSession(window, Backends{Audio: &audiotest.FakeManager{}}); err == nil {
		t.Fatal("expected error without texture context")
	}
}

func mustEvents(t *testing.T) *orion.Events {
	t.Helper()

	events, err := orion.NewEvents(orion.DefaultEventSettings())
	if err != nil {
		t.Fatal(err)
	}

	return events
}

func TestNewSessionFailsWithoutMusicTrack(t *testing.T) {
	window, err := orion.NewWithBackends(oriontest.NewFakeWindow(64, 64), &oriontest.FakeGPU{}, &oriontest.FakeRenderer{}, mustEvents(t))
	if err != nil {
		t.Fatal(err)
	}

	manager := &audiotest.FakeManager{SubTrackErr: errors.New("no tracks left")}

	_, err = NewSession(window, Backends{Textures: &fakeTextures{}, Audio: manager})
	if err == nil {
		t.Fatal("expected error")
	}

	if !manager.Closed {
		t.Error("audio manager was not closed after failed setup")
	}
}

func TestSessionTeardownOrder(t *testing.T) {
	ts := newTestSession(t)

	var names []string
	for _, c := range ts.closers {
		names = append(names, c.name)
	}

	expected := []string{
		"window", "event", "fonts", "font names", "images", "image names",
		"texture context", "textures", "audio manager", "music track",
		"sounds", "music", "lua",
	}

	if !slices.Equal(names, expected) {
		t.Fatalf("installation order\n got %v\nwant %v", names, expected)
	}
}

func TestSessionCloseReleasesEverything(t *testing.T) {
	ts := newTestSession(t)

	ts.AddImage("red", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	_ = ts.BindSound("explosion", "boom.wav")

	if ok, err := ts.NextEvent(); !ok || err != nil {
		t.Fatalf("NextEvent() = %v, %v", ok, err)
	}

	ts.Close()

	if ts.window != nil || ts.event != nil || ts.images != nil || ts.sounds != nil ||
		ts.musicMap != nil || ts.textureContext != nil || ts.Session.audio != nil || ts.music != nil || ts.lua != nil ||
		ts.Session.textures != nil || ts.fonts != nil {
		t.Fatal("session still references resources after close")
	}

	if !ts.Session.closed {
		t.Fatal("session not marked closed")
	}

	if !ts.audio.Closed {
		t.Error("audio manager not closed")
	}

	if err := ts.PlaySound("explosion", 1, 1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("PlaySound after close = %v", err)
	}

	if _, err := ts.NextEvent(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("NextEvent after close = %v", err)
	}

	// closing twice is fine
	ts.Close()
}

func TestSessionCloseReleasesGPUResourcesBeforeWindow(t *testing.T) {
	ts := newTestSession(t)

	imageID := ts.AddImage("red", image.NewRGBA(image.Rect(0, 0, 4, 4)))

	textureID, err := ts.CreateTexture(imageID)
	if err != nil {
		t.Fatalf("CreateTexture() = %v", err)
	}

	object, err := ts.CreateTextureObject(ImageRef{ID: imageID})
	if err != nil {
		t.Fatalf("CreateTextureObject() = %v", err)
	}

	fontID, err := ts.LoadFont("regular.ttf")
	if err != nil {
		t.Fatalf("LoadFont() = %v", err)
	}

	fontObject, err := ts.LoadFontObject("mono.ttf")
	if err != nil {
		t.Fatalf("LoadFontObject() = %v", err)
	}

	windowAlive := func(what string) func() {
		return func() {
			if ts.window == nil {
				t.Errorf("%s released after the window was closed", what)
			}
		}
	}

	texture := ts.Session.textures[textureID].(*oriontest.FakeTexture)
	texture.OnRelease = windowAlive("texture")

	textureObject := object.(*oriontest.FakeTexture)
	textureObject.OnRelease = windowAlive("texture object")

	font := ts.fonts[fontID].(*fakeGlyphs)
	font.onRelease = windowAlive("font")

	fontObj := fontObject.(*fakeGlyphs)
	fontObj.onRelease = windowAlive("font object")

	ts.Close()

	if !texture.Released || !textureObject.Released {
		t.Error("textures not released")
	}

	if !font.released || !fontObj.released {
		t.Error("fonts not released")
	}
}

func TestSessionCloseAfterScriptFailure(t *testing.T) {
	ts := newTestSession(t)

	err := ts.RunString(`error("boom")`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected script error, got %v", err)
	}

	ts.Close()

	if !ts.audio.Closed || ts.lua != nil {
		t.Fatal("session not torn down after failure")
	}
}

func TestNextEventRecordsCurrentEvent(t *testing.T) {
	ts := newTestSession(t)

	if ts.Event() != nil {
		t.Fatal("expected no event before the first tick")
	}

	ok, err := ts.NextEvent()
	if !ok || err != nil {
		t.Fatalf("NextEvent() = %v, %v", ok, err)
	}

	if _, ok := ts.Event().(orion.Render); !ok {
		t.Fatalf("expected render event, got %T", ts.Event())
	}

	ts.win.SetShouldClose(true)

	ok, err = ts.NextEvent()
	for ok && err == nil {
		ok, err = ts.NextEvent()
	}

	if err != nil {
		t.Fatal(err)
	}

	if ts.Event() != nil {
		t.Fatalf("expected no event after the stream ended, got %T", ts.Event())
	}
}

func TestLoadBuiltinFonts(t *testing.T) {
	ts := newTestSession(t)

	if err := ts.LoadBuiltinFonts(); err != nil {
		t.Fatal(err)
	}

	for id, expected := range []string{"Go-Regular", "Go-Mono"} {
		name, err := ts.FontName(id)
		if err != nil || name != expected {
			t.Errorf("FontName(%d) = %q, %v, want %q", id, name, err, expected)
		}
	}
}

func TestWindowPassThrough(t *testing.T) {
	ts := newTestSession(t)

	ts.Window().SetTitle("scripted")
	if ts.win.Title() != "scripted" {
		t.Errorf("title not passed to window: %q", ts.win.Title())
	}

	ts.Window().SetSize(glimpse.Size{Width: 320, Height: 200})
	if size := ts.win.Size(); size.Width != 320 || size.Height != 200 {
		t.Errorf("size not passed to window: %v", size)
	}
}
