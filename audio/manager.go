package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto supports only one context per process, all managers share it.
var sharedContext = sync.OnceValue(func() *oto.Context {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		Format:       oto.FormatFloat32LE,
		ChannelCount: 2,
		BufferSize:   32 * time.Millisecond,
	})

	if err != nil {
		slog.Warn("Failed to initialize audio context, sounds will be silent", slog.String("error", err.Error()))
		return nil
	}

	go func() {
		<-ready
		slog.Info("Audio context is ready")
	}()

	return ctx
})

// Track mixes sounds played on it and applies a common volume.
type Track interface {
	Play(sound Sound) (Handle, error)
	SetVolume(volume Decibels)
}

// Manager owns the audio output and the tracks sounds are played on.
type Manager struct {
	ctx  *oto.Context
	main *track

	mu     sync.Mutex
	tracks []*track
	closed bool
}

// NewManager creates a manager on the default audio device. If no
// device is available, sounds are accepted but not played.
func NewManager() *Manager {
	return newManager(sharedContext())
}

func newManager(ctx *oto.Context) *Manager {
	m := &Manager{ctx: ctx}
	m.main = m.newTrack(nil)
	return m
}

// Silent reports whether the manager has no audio device to play on.
func (m *Manager) Silent() bool {
	return m.ctx == nil
}

func (m *Manager) MainTrack() Track {
	return m.main
}

// AddSubTrack adds a new track whose volume is scaled by the main track.
func (m *Manager) AddSubTrack() (Track, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return nil, fmt.Errorf("add sub track: %w", ErrClosed)
	}

	return m.newTrack(m.main), nil
}

func (m *Manager) newTrack(parent *track) *track {
	t := &track{
		manager: m,
		parent:  parent,
		handles: map[*playerHandle]struct{}{},
	}

	m.mu.Lock()
	m.tracks = append(m.tracks, t)
	m.mu.Unlock()

	return t
}

// Close stops every sound still playing. The manager can not be
// used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	tracks := m.tracks
	m.tracks = nil
	m.closed = true
	m.mu.Unlock()

	for _, t := range tracks {
		t.stopAll()
	}
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type track struct {
	manager *Manager
	parent  *track

	mu      sync.Mutex
	volume  Decibels
	handles map[*playerHandle]struct{}
}

func (t *track) Play(sound Sound) (Handle, error) {
	if t.manager.isClosed() {
		return nil, fmt.Errorf("play: %w", ErrClosed)
	}

	if t.manager.ctx == nil {
		return &silentHandle{loop: sound.Looping(), volume: sound.Volume()}, nil
	}

	source, err := sound.open()
	if err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}

	v := newVoice(source, sound.Looping())

	h := &playerHandle{
		track:  t,
		voice:  v,
		player: t.manager.ctx.NewPlayer(v),
		volume: sound.Volume(),
	}

	h.applyVolume()
	h.player.Play()

	t.register(h)

	return h, nil
}

func (t *track) SetVolume(volume Decibels) {
	t.mu.Lock()
	t.volume = volume
	t.mu.Unlock()

	for _, h := range t.snapshot() {
		h.applyVolume()
	}

	// sub tracks inherit the volume of the main track
	if t.parent == nil {
		t.manager.mu.Lock()
		tracks := append([]*track(nil), t.manager.tracks...)
		t.manager.mu.Unlock()

		for _, sub := range tracks {
			if sub.parent == t {
				for _, h := range sub.snapshot() {
					h.applyVolume()
				}
			}
		}
	}
}

func (t *track) amplitude() float64 {
	t.mu.Lock()
	amplitude := t.volume.Amplitude()
	t.mu.Unlock()

	if t.parent != nil {
		amplitude *= t.parent.amplitude()
	}

	return amplitude
}

// register keeps a reference to the handle while it might still be
// playing and drops the ones that finished.
func (t *track) register(h *playerHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for other := range t.handles {
		if other.voice.finished() && !other.player.IsPlaying() {
			delete(t.handles, other)
			_ = other.player.Close()
		}
	}

	t.handles[h] = struct{}{}
}

func (t *track) snapshot() []*playerHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	handles := make([]*playerHandle, 0, len(t.handles))
	for h := range t.handles {
		handles = append(handles, h)
	}

	return handles
}

func (t *track) stopAll() {
	for _, h := range t.snapshot() {
		h.stop()
	}

	t.mu.Lock()
	clear(t.handles)
	t.mu.Unlock()
}
