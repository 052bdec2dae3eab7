package host

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVSink encodes frame-interleaved float64 samples as integer PCM WAV.
// Samples outside [-1, 1] are clipped and counted.
type WAVSink struct {
	enc      *wav.Encoder
	ibuf     *audio.IntBuffer
	channels int
	maxInt   float64
	clipped  int
	c        io.Closer
}

// NewWAVSink writes a WAV stream to w. bitDepth must be 16, 24 or 32. If
// w is an io.Closer, Close closes it after finalizing the header.
func NewWAVSink(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*WAVSink, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, bitDepth)
	}
	if channels < 1 {
		return nil, fmt.Errorf("host: invalid channel count %d", channels)
	}

	s := &WAVSink{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, channels, wavFormatPCM),
		ibuf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
		maxInt:   float64(int64(1)<<(bitDepth-1)) - 1,
	}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}

	return s, nil
}

// CreateWAV creates (or truncates) path and returns a sink writing to it.
func CreateWAV(path string, sampleRate, channels, bitDepth int) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("host: create output: %w", err)
	}

	s, err := NewWAVSink(f, sampleRate, channels, bitDepth)
	if err != nil {
		f.Close()
		os.Remove(path)

		return nil, err
	}

	return s, nil
}

// Write encodes whole frames from interleaved.
func (s *WAVSink) Write(interleaved []float64) error {
	n := len(interleaved) / s.channels * s.channels
	if n == 0 {
		return nil
	}

	if cap(s.ibuf.Data) < n {
		s.ibuf.Data = make([]int, n)
	}
	s.ibuf.Data = s.ibuf.Data[:n]

	for i, v := range interleaved[:n] {
		switch {
		case v > 1:
			v = 1
			s.clipped++
		case v < -1:
			v = -1
			s.clipped++
		case math.IsNaN(v):
			v = 0
		}
		s.ibuf.Data[i] = int(math.Round(v * s.maxInt))
	}

	if err := s.enc.Write(s.ibuf); err != nil {
		return fmt.Errorf("host: encode wav: %w", err)
	}

	return nil
}

// Clipped returns the number of samples clipped so far.
func (s *WAVSink) Clipped() int { return s.clipped }

// Close finalizes the WAV header and closes the underlying writer.
func (s *WAVSink) Close() error {
	err := s.enc.Close()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("host: finalize wav: %w", err)
	}

	return nil
}
