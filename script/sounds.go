package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/oliverbestmann/pistonwindow/audio"
)

var ErrUnknownSound = errors.New("unknown sound")
var ErrInvalidRepeat = errors.New("repeat must be -1, 0 or positive")

// Forever repeats a sound or music until it is stopped.
const Forever = -1

// BindSound registers a sound under name. The file is loaded the first
// time the sound is played.
func (s *Session) BindSound(name, file string) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.sounds[name] = &soundEntry{file: file}
	return nil
}

// BindMusic registers music under name. Music is streamed from file
// while it plays.
func (s *Session) BindMusic(name, file string) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.musicMap[name] = &musicEntry{file: file}
	return nil
}

func (s *Session) sound(name string) (audio.StaticSoundData, error) {
	entry, ok := s.sounds[name]
	if !ok {
		return audio.StaticSoundData{}, fmt.Errorf("sound %q: %w", name, ErrUnknownSound)
	}

	if entry.data == nil {
		data, err := s.loader.LoadSound(entry.file)
		if err != nil {
			return audio.StaticSoundData{}, fmt.Errorf("load sound %q: %w", name, err)
		}

		entry.data = &data
	}

	return *entry.data, nil
}

func checkRepeat(repeat int) error {
	if repeat < Forever {
		return fmt.Errorf("repeat %d: %w", repeat, ErrInvalidRepeat)
	}

	return nil
}

// PlaySound plays the sound bound to name on the main track. A repeat
// of Forever loops the sound, a repeat of n plays it n times back to back,
// zero does nothing. Volume is an amplitude between 0 and 1.
func (s *Session) PlaySound(name string, repeat int, volume float64) error {
	if s.closed {
		return ErrSessionClosed
	}

	if err := checkRepeat(repeat); err != nil {
		return err
	}

	if _, ok := s.sounds[name]; !ok {
		return fmt.Errorf("sound %q: %w", name, ErrUnknownSound)
	}

	if repeat == 0 {
		return nil
	}

	data, err := s.sound(name)
	if err != nil {
		return err
	}

	data = data.WithVolume(audio.AmplitudeToDecibels(volume))

	track := s.audio.MainTrack()

	if repeat == Forever {
		if _, err := track.Play(data.WithLoopRegion()); err != nil {
			return fmt.Errorf("play sound %q: %w", name, err)
		}

		return nil
	}

	duration := data.Duration()

	return schedule(repeat, 0, duration, func() (audio.Handle, error) {
		handle, err := track.Play(data)
		if err != nil {
			return nil, fmt.Errorf("play sound %q: %w", name, err)
		}

		return handle, nil
	})
}

// PlaySoundForever loops the sound bound to name.
func (s *Session) PlaySoundForever(name string, volume float64) error {
	return s.PlaySound(name, Forever, volume)
}

// schedule calls play n times. Play k starts after first + k*step, the
// handle is paused and resumed delayed unless it starts right away. All
// plays are scheduled upfront, drift between the clips is not corrected.
func schedule(n int, first, step time.Duration, play func() (audio.Handle, error)) error {
	start := first
	for range n {
		handle, err := play()
		if err != nil {
			return err
		}

		if start > 0 {
			handle.Pause()
			handle.ResumeAt(start)
		}

		start += step
	}

	return nil
}

// PlayMusic streams the music bound to name on the music track. Repeat
// works like for PlaySound. Every repeat opens its own stream.
func (s *Session) PlayMusic(name string, repeat int) error {
	if s.closed {
		return ErrSessionClosed
	}

	if err := checkRepeat(repeat); err != nil {
		return err
	}

	entry, ok := s.musicMap[name]
	if !ok {
		return fmt.Errorf("music %q: %w", name, ErrUnknownSound)
	}

	if repeat == 0 {
		return nil
	}

	if repeat == Forever {
		return s.playMusicForever(name, entry)
	}

	handle, duration, err := s.startMusic(name, entry)
	if err != nil {
		return err
	}

	entry.handle = handle

	return schedule(repeat-1, duration, duration, func() (audio.Handle, error) {
		handle, _, err := s.startMusic(name, entry)
		return handle, err
	})
}

// startMusic opens a new stream of the music and plays it.
func (s *Session) startMusic(name string, entry *musicEntry) (audio.Handle, time.Duration, error) {
	stream, err := s.loader.OpenMusic(entry.file)
	if err != nil {
		return nil, 0, fmt.Errorf("open music %q: %w", name, err)
	}

	handle, err := s.music.Play(stream)
	if err != nil {
		return nil, 0, fmt.Errorf("play music %q: %w", name, err)
	}

	return handle, stream.Duration(), nil
}

// PlayMusicForever loops the music bound to name. If the music was
// played before, its last handle is resumed instead.
func (s *Session) PlayMusicForever(name string) error {
	if s.closed {
		return ErrSessionClosed
	}

	entry, ok := s.musicMap[name]
	if !ok {
		return fmt.Errorf("music %q: %w", name, ErrUnknownSound)
	}

	return s.playMusicForever(name, entry)
}

func (s *Session) playMusicForever(name string, entry *musicEntry) error {
	if entry.handle != nil {
		entry.handle.SetLoopRegion(true)
		entry.handle.Resume()
		return nil
	}

	handle, _, err := s.startMusic(name, entry)
	if err != nil {
		return err
	}

	handle.SetLoopRegion(true)
	entry.handle = handle

	return nil
}

// SetMusicVolume sets the volume of the music track to the given amplitude.
func (s *Session) SetMusicVolume(volume float64) error {
	if s.closed {
		return ErrSessionClosed
	}

	s.music.SetVolume(audio.AmplitudeToDecibels(volume))
	return nil
}
