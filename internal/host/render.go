package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/W47K3R9/LudEQ/dsp/buffer"
	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/measure/level"
)

// DefaultBlockSize is the render block size in frames.
const DefaultBlockSize = 512

// RenderOption configures Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	blockSize int
	bitDepth  int
	progress  func(done, total int64)
	logger    *slog.Logger
}

// WithBlockSize sets the processing block size. Non-positive values are
// ignored.
func WithBlockSize(frames int) RenderOption {
	return func(c *renderConfig) {
		if frames > 0 {
			c.blockSize = frames
		}
	}
}

// WithBitDepth sets the output bit depth for RenderFile. The default keeps
// the input's depth.
func WithBitDepth(bits int) RenderOption {
	return func(c *renderConfig) {
		c.bitDepth = bits
	}
}

// WithProgress registers a callback invoked after every block with the
// frames done so far and the total (-1 when unknown).
func WithProgress(fn func(done, total int64)) RenderOption {
	return func(c *renderConfig) {
		c.progress = fn
	}
}

// WithLogger sets the logger for render summaries. The default discards.
func WithLogger(l *slog.Logger) RenderOption {
	return func(c *renderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{
		blockSize: DefaultBlockSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// RenderStats summarizes a finished render.
type RenderStats struct {
	Frames  int64
	Clipped int
	// Levels holds the output peak and RMS per channel over the whole
	// render.
	Levels  []level.Reading
	Elapsed time.Duration
}

// Render pulls src through proc into dst until src is exhausted or ctx is
// canceled. proc is prepared for the source format first. dst is not
// closed.
func Render(ctx context.Context, src Source, dst *WAVSink, proc *Processor, opts ...RenderOption) (RenderStats, error) {
	cfg := newRenderConfig(opts)
	meta := src.Metadata()
	start := time.Now()

	if meta.Channels > eq.MaxChannels {
		return RenderStats{}, fmt.Errorf("%w: %d", ErrTooManyChannels, meta.Channels)
	}
	if err := proc.PrepareConfig(streamConfig(meta, cfg.blockSize)); err != nil {
		return RenderStats{}, err
	}

	pool := buffer.NewPool()
	interleaved := make([]float64, cfg.blockSize*meta.Channels)

	var stats RenderStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := src.Read(interleaved)
		if n > 0 {
			blk := pool.Get(meta.Channels, n)
			buffer.Deinterleave(blk, interleaved[:n*meta.Channels], meta.Channels)
			proc.Process(blk.Channels())
			buffer.Interleave(interleaved, blk)
			pool.Put(blk)

			if werr := dst.Write(interleaved[:n*meta.Channels]); werr != nil {
				return stats, werr
			}
			stats.Frames += int64(n)

			if cfg.progress != nil {
				cfg.progress(stats.Frames, meta.Frames)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
	}

	stats.Clipped = dst.Clipped()
	stats.Levels = proc.Meter().TakeAll(nil)
	stats.Elapsed = time.Since(start)

	cfg.logger.Info("render finished",
		"frames", stats.Frames,
		"sample_rate", meta.SampleRate,
		"channels", meta.Channels,
		"clipped", stats.Clipped,
		"elapsed", stats.Elapsed)

	return stats, nil
}

// RenderFile renders the WAV or MP3 file at inPath to a WAV file at
// outPath with the same sample rate and channel count.
func RenderFile(ctx context.Context, inPath, outPath string, proc *Processor, opts ...RenderOption) (RenderStats, error) {
	cfg := newRenderConfig(opts)

	src, err := OpenSource(inPath)
	if err != nil {
		return RenderStats{}, err
	}
	defer src.Close()

	meta := src.Metadata()
	bits := cfg.bitDepth
	if bits == 0 {
		bits = meta.BitDepth
	}

	dst, err := CreateWAV(outPath, meta.SampleRate, meta.Channels, bits)
	if err != nil {
		return RenderStats{}, err
	}

	stats, err := Render(ctx, src, dst, proc, opts...)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return stats, err
	}

	return stats, nil
}
