package audio

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var ErrClosed = errors.New("audio manager closed")

// Handle controls a single playing sound.
type Handle interface {
	Pause()
	Resume()

	// ResumeAt restarts the sound from its beginning after the given delay.
	ResumeAt(delay time.Duration)

	// SetLoopRegion loops the whole sound if loop is true.
	SetLoopRegion(loop bool)

	SetVolume(volume Decibels)
	IsPlaying() bool
}

// samplesOf converts a duration into a number of output samples.
func samplesOf(d time.Duration) int {
	return int(d.Seconds() * SampleRate)
}

type playerHandle struct {
	track  *track
	voice  *voice
	player *oto.Player

	mu     sync.Mutex
	volume Decibels
}

func (h *playerHandle) Pause() {
	h.player.Pause()
}

func (h *playerHandle) Resume() {
	h.player.Play()
}

func (h *playerHandle) ResumeAt(delay time.Duration) {
	h.player.Pause()

	// drops everything the player has buffered and rewinds the voice
	if _, err := h.player.Seek(0, io.SeekStart); err != nil {
		slog.Warn("Failed to rewind sound", slog.String("error", err.Error()))
		return
	}

	h.voice.setDelay(samplesOf(delay))
	h.player.Play()
}

func (h *playerHandle) SetLoopRegion(loop bool) {
	h.voice.setLoop(loop)
}

func (h *playerHandle) SetVolume(volume Decibels) {
	h.mu.Lock()
	h.volume = volume
	h.mu.Unlock()

	h.applyVolume()
}

func (h *playerHandle) IsPlaying() bool {
	return h.player.IsPlaying()
}

func (h *playerHandle) applyVolume() {
	h.mu.Lock()
	amplitude := h.volume.Amplitude()
	h.mu.Unlock()

	h.player.SetVolume(amplitude * h.track.amplitude())
}

func (h *playerHandle) stop() {
	h.player.Pause()
	_ = h.player.Close()
	_ = h.voice.close()
}

// silentHandle is handed out when there is no audio device.
type silentHandle struct {
	mu     sync.Mutex
	paused bool
	loop   bool
	volume Decibels
}

func (s *silentHandle) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *silentHandle) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *silentHandle) ResumeAt(time.Duration) {
	s.Resume()
}

func (s *silentHandle) SetLoopRegion(loop bool) {
	s.mu.Lock()
	s.loop = loop
	s.mu.Unlock()
}

func (s *silentHandle) SetVolume(volume Decibels) {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
}

func (s *silentHandle) IsPlaying() bool {
	return false
}
