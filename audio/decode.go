package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	pcm "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// LoadStaticSound decodes the complete file at path into memory.
// Supported are wav and mp3 files.
func LoadStaticSound(path string) (StaticSoundData, error) {
	src, err := openFileSource(path)
	if err != nil {
		return StaticSoundData{}, err
	}

	defer func() { _ = src.Close() }()

	var samples []StereoSample

	buf := make([]StereoSample, 4096)
	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return StaticSoundData{}, fmt.Errorf("decode %q: %w", path, err)
		}
	}

	sound := StaticSoundData{
		Samples:    samples,
		SampleRate: src.SampleRate(),
	}

	return sound, nil
}

// OpenStream prepares the file at path for streaming. The header is
// checked right away, samples are decoded only while playing.
func OpenStream(path string) (*StreamingSoundData, error) {
	src, err := openFileSource(path)
	if err != nil {
		return nil, err
	}

	defer func() { _ = src.Close() }()

	sound := &StreamingSoundData{
		path:     path,
		rate:     src.SampleRate(),
		duration: src.duration(),
	}

	return sound, nil
}

type fileSource interface {
	sampleSource
	duration() time.Duration
}

func openFileSource(path string) (fileSource, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return openWavSource(path)

	case ".mp3":
		return openMP3Source(path)

	default:
		return nil, fmt.Errorf("open %q: %w", path, ErrUnsupportedFormat)
	}
}

type wavSource struct {
	fp  *os.File
	dec *wav.Decoder
	buf *pcm.IntBuffer

	channels int
	depth    int
	rate     int
}

func openWavSource(path string) (*wavSource, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	src := &wavSource{fp: fp}
	if err := src.Rewind(); err != nil {
		_ = fp.Close()
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	src.channels = int(src.dec.NumChans)
	src.depth = int(src.dec.BitDepth)
	src.rate = int(src.dec.SampleRate)

	if src.channels < 1 || src.channels > 2 {
		_ = fp.Close()
		return nil, fmt.Errorf("open %q: %d channels: %w", path, src.channels, ErrUnsupportedFormat)
	}

	src.buf = &pcm.IntBuffer{
		Format: &pcm.Format{NumChannels: src.channels, SampleRate: src.rate},
		Data:   make([]int, 4096*src.channels),
	}

	return src, nil
}

func (w *wavSource) SampleRate() int {
	return w.rate
}

func (w *wavSource) duration() time.Duration {
	frameSize := int64(w.channels * w.depth / 8)
	if frameSize == 0 || w.rate == 0 {
		return 0
	}

	frames := w.dec.PCMLen() / frameSize
	return time.Duration(frames) * time.Second / time.Duration(w.rate)
}

func (w *wavSource) ReadSamples(buf []StereoSample) (int, error) {
	want := min(len(buf)*w.channels, cap(w.buf.Data))
	w.buf.Data = w.buf.Data[:want]

	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	if n == 0 {
		return 0, io.EOF
	}

	scale := float32(int(1) << (w.depth - 1))

	count := n / w.channels
	for idx := range count {
		left := w.normalize(w.buf.Data[idx*w.channels], scale)
		right := left

		if w.channels == 2 {
			right = w.normalize(w.buf.Data[idx*w.channels+1], scale)
		}

		buf[idx] = StereoSample{left, right}
	}

	return count, nil
}

func (w *wavSource) normalize(value int, scale float32) Sample {
	if w.depth == 8 {
		// 8 bit wav data is unsigned
		return float32(value-128) / 128
	}

	return float32(value) / scale
}

func (w *wavSource) Rewind() error {
	if _, err := w.fp.Seek(0, io.SeekStart); err != nil {
		return err
	}

	dec := wav.NewDecoder(w.fp)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %w", ErrUnsupportedFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return err
	}

	w.dec = dec

	return nil
}

func (w *wavSource) Close() error {
	return w.fp.Close()
}

type mp3Source struct {
	fp  *os.File
	dec *mp3.Decoder
	raw []byte
}

func openMP3Source(path string) (*mp3Source, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	dec, err := mp3.NewDecoder(fp)
	if err != nil {
		_ = fp.Close()
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	return &mp3Source{fp: fp, dec: dec}, nil
}

func (m *mp3Source) SampleRate() int {
	return m.dec.SampleRate()
}

func (m *mp3Source) duration() time.Duration {
	// decoded output is always 16 bit stereo
	samples := m.dec.Length() / 4
	if samples <= 0 {
		return 0
	}

	return time.Duration(samples) * time.Second / time.Duration(m.dec.SampleRate())
}

func (m *mp3Source) ReadSamples(buf []StereoSample) (int, error) {
	if cap(m.raw) < len(buf)*4 {
		m.raw = make([]byte, len(buf)*4)
	}

	raw := m.raw[:len(buf)*4]

	n, err := io.ReadFull(m.dec, raw)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}

	count := n / 4
	for idx := range count {
		left := int16(uint16(raw[idx*4]) | uint16(raw[idx*4+1])<<8)
		right := int16(uint16(raw[idx*4+2]) | uint16(raw[idx*4+3])<<8)
		buf[idx] = StereoSample{float32(left) / 32768, float32(right) / 32768}
	}

	if count == 0 && err == nil {
		err = io.EOF
	}

	return count, err
}

func (m *mp3Source) Rewind() error {
	_, err := m.dec.Seek(0, io.SeekStart)
	return err
}

func (m *mp3Source) Close() error {
	return m.fp.Close()
}
