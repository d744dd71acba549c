package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
)

// voice renders a sampleSource as interleaved float32 stereo samples at
// SampleRate. It is read by the oto player from its own goroutine.
type voice struct {
	mu sync.Mutex

	source sampleSource
	step   float64

	// number of silent samples to emit before the source starts
	delay int

	loop   bool
	done   bool
	ending bool

	chunk  []StereoSample
	cursor int

	primed     bool
	prev, next StereoSample
	frac       float64
}

func newVoice(source sampleSource, loop bool) *voice {
	step := 1.0
	if rate := source.SampleRate(); rate > 0 {
		step = float64(rate) / SampleRate
	}

	return &voice{
		source: source,
		step:   step,
		loop:   loop,
		chunk:  make([]StereoSample, 0, 1024),
	}
}

func (v *voice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	count := len(p) / stereoSampleSize
	if count == 0 {
		return 0, nil
	}

	var written int
	for written < count {
		sample, ok := v.render()
		if !ok {
			break
		}

		offset := written * stereoSampleSize
		binary.LittleEndian.PutUint32(p[offset:], math.Float32bits(sample[0]))
		binary.LittleEndian.PutUint32(p[offset+4:], math.Float32bits(sample[1]))
		written++
	}

	if written == 0 {
		return 0, io.EOF
	}

	return written * stereoSampleSize, nil
}

// Seek only supports seeking back to the start of the voice.
func (v *voice) Seek(offset int64, whence int) (int64, error) {
	if offset != 0 || whence != io.SeekStart {
		return 0, errors.New("voice can only seek to start")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.rewind(); err != nil {
		return 0, err
	}

	v.delay = 0
	v.done = false

	return 0, nil
}

func (v *voice) setDelay(samples int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.delay = max(0, samples)
}

func (v *voice) setLoop(loop bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loop = loop
}

func (v *voice) finished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.done
}

func (v *voice) close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.done = true
	return v.source.Close()
}

func (v *voice) rewind() error {
	v.chunk = v.chunk[:0]
	v.cursor = 0
	v.primed = false
	v.ending = false
	v.frac = 0
	return v.source.Rewind()
}

// render produces the next output sample using linear interpolation
// between two neighbouring source samples.
func (v *voice) render() (StereoSample, bool) {
	if v.done {
		return StereoSample{}, false
	}

	if v.delay > 0 {
		v.delay--
		return StereoSample{}, true
	}

	if !v.primed {
		var ok bool
		if v.prev, ok = v.pull(); !ok {
			return StereoSample{}, false
		}

		// a single sample source repeats its only sample
		if v.next, ok = v.pull(); !ok {
			v.next = v.prev
		}

		v.primed = true
	}

	for v.frac >= 1 {
		sample, ok := v.pull()
		if !ok {
			if v.ending {
				return StereoSample{}, false
			}

			// hold the final sample so it is rendered once
			v.ending = true
			sample = v.next
		}

		v.prev, v.next = v.next, sample
		v.frac -= 1
	}

	t := float32(v.frac)
	v.frac += v.step

	return StereoSample{
		v.prev[0] + (v.next[0]-v.prev[0])*t,
		v.prev[1] + (v.next[1]-v.prev[1])*t,
	}, true
}

// pull returns the next source sample, restarting the source if the
// voice is looping.
func (v *voice) pull() (StereoSample, bool) {
	for attempt := 0; v.cursor >= len(v.chunk); attempt++ {
		n, err := v.source.ReadSamples(v.chunk[:cap(v.chunk)])
		v.chunk = v.chunk[:n]
		v.cursor = 0

		if n > 0 {
			break
		}

		// an empty source would loop forever
		if errors.Is(err, io.EOF) && v.loop && attempt == 0 {
			if err := v.source.Rewind(); err == nil {
				continue
			}
		}

		v.done = true
		return StereoSample{}, false
	}

	sample := v.chunk[v.cursor]
	v.cursor++

	return sample, true
}
