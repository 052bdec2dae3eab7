package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/W47K3R9/LudEQ/dsp/buffer"
	oto "github.com/ebitengine/oto/v3"
)

// Player streams a Source through a Processor to the default audio
// device.
type Player struct {
	context *oto.Context
	player  *oto.Player
	stream  *stream
	paused  atomic.Bool
}

// NewPlayer opens the audio device at the source's rate and prepares proc.
// Only one Player may exist per process.
func NewPlayer(src Source, proc *Processor, blockSize int) (*Player, error) {
	meta := src.Metadata()
	if meta.Channels > 2 {
		return nil, fmt.Errorf("%w: device output supports 2, stream has %d", ErrTooManyChannels, meta.Channels)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	if err := proc.PrepareConfig(streamConfig(meta, blockSize)); err != nil {
		return nil, err
	}

	otoContext, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   meta.SampleRate,
		ChannelCount: meta.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("host: open audio device: %w", err)
	}
	<-readyChan

	s := newStream(src, proc, blockSize)

	return &Player{
		context: otoContext,
		player:  otoContext.NewPlayer(s),
		stream:  s,
	}, nil
}

// Play starts or resumes playback.
func (p *Player) Play() {
	p.paused.Store(false)
	p.player.Play()
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.paused.Store(true)
	p.player.Pause()
}

// IsPlaying reports whether audio is still being played.
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Wait blocks until playback finishes or ctx is done. A paused player has
// not finished. Call Wait after Play.
func (p *Player) Wait(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.paused.Load() {
				continue
			}
			if !p.player.IsPlaying() {
				return p.stream.Err()
			}
		}
	}
}

// Close stops playback and releases the device stream.
func (p *Player) Close() error {
	p.player.Pause()

	return p.player.Close()
}

// stream adapts Source + Processor to the float32 byte stream oto reads.
// Read runs on oto's audio goroutine.
type stream struct {
	src         Source
	proc        *Processor
	channels    int
	block       *buffer.Block
	interleaved []float64
	pending     []byte
	pos         int
	err         error

	// final publishes err to other goroutines once the stream ends.
	final atomic.Pointer[error]
}

func newStream(src Source, proc *Processor, blockSize int) *stream {
	ch := src.Metadata().Channels

	return &stream{
		src:         src,
		proc:        proc,
		channels:    ch,
		block:       buffer.New(ch, blockSize),
		interleaved: make([]float64, blockSize*ch),
		pending:     make([]byte, 0, blockSize*ch*4),
	}
}

func (s *stream) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.pos >= len(s.pending) {
			if s.err != nil {
				break
			}
			s.fill()
			if len(s.pending) == 0 {
				break
			}
		}

		n := copy(p[total:], s.pending[s.pos:])
		s.pos += n
		total += n
	}

	if total == 0 && s.err != nil {
		return 0, io.EOF
	}

	return total, nil
}

func (s *stream) fill() {
	s.pending = s.pending[:0]
	s.pos = 0

	n, err := s.src.Read(s.interleaved)
	if err != nil {
		s.err = err
		s.final.Store(&err)
	}
	if n == 0 {
		return
	}

	s.block.Resize(n)
	buffer.Deinterleave(s.block, s.interleaved[:n*s.channels], s.channels)
	s.proc.Process(s.block.Channels())
	buffer.Interleave(s.interleaved, s.block)

	for _, v := range s.interleaved[:n*s.channels] {
		clamped := math.Max(-1, math.Min(1, v))
		s.pending = binary.LittleEndian.AppendUint32(s.pending, math.Float32bits(float32(clamped)))
	}
}

// Err returns the decode error that ended the stream, or nil after a
// normal end of stream.
func (s *stream) Err() error {
	p := s.final.Load()
	if p == nil || errors.Is(*p, io.EOF) {
		return nil
	}

	return *p
}
