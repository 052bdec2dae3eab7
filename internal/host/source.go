package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Metadata describes a decoded stream.
type Metadata struct {
	Format     string // "wav" or "mp3"
	SampleRate int
	Channels   int
	BitDepth   int
	// Frames is the stream length, or -1 when unknown.
	Frames int64
}

// Source yields frame-interleaved float64 samples in [-1, 1].
type Source interface {
	Metadata() Metadata
	// Read fills dst with whole frames and returns the number of frames
	// read. It returns io.EOF once the stream is exhausted.
	Read(dst []float64) (int, error)
	Close() error
}

// OpenSource opens a WAV or MP3 file, chosen by extension.
func OpenSource(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("host: open input: %w", err)
	}

	var src Source
	if ext == ".wav" {
		src, err = NewWAVSource(f)
	} else {
		src, err = NewMP3Source(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}

// WAVSource decodes integer PCM WAV data.
type WAVSource struct {
	dec   *wav.Decoder
	meta  Metadata
	ibuf  *audio.IntBuffer
	scale float64
	c     io.Closer
}

// NewWAVSource reads the WAV header from r. If r is an io.Closer, Close
// closes it.
func NewWAVSource(r io.ReadSeeker) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", ErrUnsupportedFormat)
	}

	// 1 is integer PCM, 0xFFFE is WAVE_FORMAT_EXTENSIBLE.
	if dec.WavAudioFormat != 1 && dec.WavAudioFormat != 0xFFFE {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	switch bits {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bits)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	chans := int(dec.NumChans)
	frames := int64(-1)
	if n := dec.PCMLen(); n > 0 {
		frames = n / int64(chans*bits/8)
	}

	s := &WAVSource{
		dec: dec,
		meta: Metadata{
			Format:     "wav",
			SampleRate: int(dec.SampleRate),
			Channels:   chans,
			BitDepth:   bits,
			Frames:     frames,
		},
		ibuf:  &audio.IntBuffer{},
		scale: 1 / float64(int64(1)<<(bits-1)),
	}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}

	return s, nil
}

// Metadata implements Source.
func (s *WAVSource) Metadata() Metadata { return s.meta }

// Read implements Source.
func (s *WAVSource) Read(dst []float64) (int, error) {
	chans := s.meta.Channels
	want := len(dst) / chans * chans
	if want == 0 {
		return 0, nil
	}

	if cap(s.ibuf.Data) < want {
		s.ibuf.Data = make([]int, want)
	}
	s.ibuf.Data = s.ibuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.ibuf)
	if err != nil {
		return 0, fmt.Errorf("host: decode wav: %w", err)
	}

	frames := n / chans
	if frames == 0 {
		return 0, io.EOF
	}

	for i, v := range s.ibuf.Data[:frames*chans] {
		dst[i] = float64(v) * s.scale
	}

	return frames, nil
}

// Close implements Source.
func (s *WAVSource) Close() error {
	if s.c == nil {
		return nil
	}

	return s.c.Close()
}

// MP3Source decodes MPEG-1/2 Layer III. The decoder always produces 16-bit
// stereo.
type MP3Source struct {
	dec  *mp3.Decoder
	meta Metadata
	raw  []byte
	c    io.Closer
}

const mp3BytesPerFrame = 4

// NewMP3Source starts decoding r. If r is an io.Closer, Close closes it.
func NewMP3Source(r io.Reader) (*MP3Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	frames := int64(-1)
	if n := dec.Length(); n > 0 {
		frames = n / mp3BytesPerFrame
	}

	s := &MP3Source{
		dec: dec,
		meta: Metadata{
			Format:     "mp3",
			SampleRate: dec.SampleRate(),
			Channels:   2,
			BitDepth:   16,
			Frames:     frames,
		},
	}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}

	return s, nil
}

// Metadata implements Source.
func (s *MP3Source) Metadata() Metadata { return s.meta }

// Read implements Source.
func (s *MP3Source) Read(dst []float64) (int, error) {
	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}

	need := frames * mp3BytesPerFrame
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	s.raw = s.raw[:need]

	n, err := io.ReadFull(s.dec, s.raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("host: decode mp3: %w", err)
	}

	got := n / mp3BytesPerFrame
	if got == 0 {
		return 0, io.EOF
	}

	for i := range got * 2 {
		v := int16(binary.LittleEndian.Uint16(s.raw[2*i:]))
		dst[i] = float64(v) / 32768
	}

	return got, nil
}

// Close implements Source.
func (s *MP3Source) Close() error {
	if s.c == nil {
		return nil
	}

	return s.c.Close()
}
