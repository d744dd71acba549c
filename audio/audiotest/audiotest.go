// Package audiotest provides recording fakes for the audio package.
package audiotest

import (
	"errors"
	"sync"
	"time"

	"github.com/oliverbestmann/pistonwindow/audio"
)

// PlayCall is a single call to FakeTrack.Play.
type PlayCall struct {
	Sound  audio.Sound
	Handle *FakeHandle
}

// FakeTrack records every sound played on it.
type FakeTrack struct {
	mu sync.Mutex

	Plays  []PlayCall
	Volume audio.Decibels

	// PlayErr is returned by Play if set.
	PlayErr error
}

func (t *FakeTrack) Play(sound audio.Sound) (audio.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.PlayErr != nil {
		return nil, t.PlayErr
	}

	h := &FakeHandle{Playing: true, Volume: sound.Volume(), Loop: sound.Looping()}
	t.Plays = append(t.Plays, PlayCall{Sound: sound, Handle: h})

	return h, nil
}

func (t *FakeTrack) SetVolume(volume audio.Decibels) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Volume = volume
}

// Handles returns the handles of all recorded plays.
func (t *FakeTrack) Handles() []*FakeHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var handles []*FakeHandle
	for _, call := range t.Plays {
		handles = append(handles, call.Handle)
	}

	return handles
}

// FakeHandle records how a sound was controlled.
type FakeHandle struct {
	mu sync.Mutex

	Playing bool
	Pauses  int
	Resumes int

	// delays passed to ResumeAt, in call order
	ResumedAt []time.Duration

	Loop   bool
	Volume audio.Decibels
}

func (h *FakeHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Playing = false
	h.Pauses++
}

func (h *FakeHandle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Playing = true
	h.Resumes++
}

func (h *FakeHandle) ResumeAt(delay time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Playing = true
	h.ResumedAt = append(h.ResumedAt, delay)
}

func (h *FakeHandle) SetLoopRegion(loop bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Loop = loop
}

func (h *FakeHandle) SetVolume(volume audio.Decibels) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Volume = volume
}

func (h *FakeHandle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.Playing
}

var ErrManagerClosed = errors.New("fake manager closed")

// FakeManager hands out FakeTracks.
type FakeManager struct {
	Main   FakeTrack
	Subs   []*FakeTrack
	Closed bool

	// SubTrackErr is returned by AddSubTrack if set.
	SubTrackErr error
}

func (m *FakeManager) MainTrack() audio.Track {
	return &m.Main
}

func (m *FakeManager) AddSubTrack() (audio.Track, error) {
	if m.SubTrackErr != nil {
		return nil, m.SubTrackErr
	}

	if m.Closed {
		return nil, ErrManagerClosed
	}

	sub := &FakeTrack{}
	m.Subs = append(m.Subs, sub)

	return sub, nil
}

func (m *FakeManager) Close() {
	m.Closed = true
}
