package audio

import (
	"io"
	"time"
	"unsafe"
)

type Sample = float32
type StereoSample [2]Sample

// SampleRate of the audio output, all sounds are resampled to it.
const SampleRate = 48000

const stereoSampleSize = int(unsafe.Sizeof(StereoSample{}))

// Sound is something that can be played on a Track.
type Sound interface {
	Duration() time.Duration

	// Volume the sound starts playing with
	Volume() Decibels

	// Looping reports whether the whole sound loops forever
	Looping() bool

	open() (sampleSource, error)
}

// StaticSoundData is a sound fully decoded into memory. It is cheap
// to copy and can be played any number of times.
type StaticSoundData struct {
	Samples []StereoSample

	// SampleRate of Samples
	SampleRate int

	volume Decibels
	loop   bool
}

func (s StaticSoundData) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}

	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

func (s StaticSoundData) Volume() Decibels {
	return s.volume
}

func (s StaticSoundData) Looping() bool {
	return s.loop
}

// WithVolume returns a copy of the sound data that plays at the given volume.
func (s StaticSoundData) WithVolume(volume Decibels) StaticSoundData {
	s.volume = volume
	return s
}

// WithLoopRegion returns a copy of the sound data that loops the whole sound.
func (s StaticSoundData) WithLoopRegion() StaticSoundData {
	s.loop = true
	return s
}

func (s StaticSoundData) open() (sampleSource, error) {
	return &sliceSource{samples: s.Samples, rate: s.SampleRate}, nil
}

// StreamingSoundData is decoded incrementally while playing. Every
// play opens the underlying file again.
type StreamingSoundData struct {
	path     string
	rate     int
	duration time.Duration

	volume Decibels
	loop   bool
}

func (s *StreamingSoundData) Path() string {
	return s.path
}

func (s *StreamingSoundData) Duration() time.Duration {
	return s.duration
}

func (s *StreamingSoundData) Volume() Decibels {
	return s.volume
}

func (s *StreamingSoundData) Looping() bool {
	return s.loop
}

func (s *StreamingSoundData) WithVolume(volume Decibels) *StreamingSoundData {
	c := *s
	c.volume = volume
	return &c
}

func (s *StreamingSoundData) WithLoopRegion() *StreamingSoundData {
	c := *s
	c.loop = true
	return &c
}

func (s *StreamingSoundData) open() (sampleSource, error) {
	return openFileSource(s.path)
}

// sampleSource produces stereo samples at its own sample rate.
type sampleSource interface {
	SampleRate() int

	// ReadSamples reads up to len(buf) samples. It returns io.EOF
	// once the end of the source is reached.
	ReadSamples(buf []StereoSample) (int, error)

	// Rewind restarts the source at the first sample.
	Rewind() error

	Close() error
}

type sliceSource struct {
	samples []StereoSample
	rate    int
	pos     int
}

func (s *sliceSource) SampleRate() int {
	return s.rate
}

func (s *sliceSource) ReadSamples(buf []StereoSample) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(buf, s.samples[s.pos:])
	s.pos += n

	return n, nil
}

func (s *sliceSource) Rewind() error {
	s.pos = 0
	return nil
}

func (s *sliceSource) Close() error {
	return nil
}
