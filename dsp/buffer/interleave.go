package buffer

// Sample is a floating-point sample type accepted by the interleave helpers.
type Sample interface {
	~float32 | ~float64
}

// Interleave writes the block into dst frame by frame (L R L R ...) and
// returns the number of frames written. It stops at whichever of the block
// or dst runs out first.
func Interleave[T Sample](dst []T, b *Block) int {
	nch := b.NumChannels()
	if nch == 0 {
		return 0
	}

	frames := min(b.frames, len(dst)/nch)
	for c, ch := range b.channels {
		for i := range frames {
			dst[i*nch+c] = T(ch[i])
		}
	}

	return frames
}

// Deinterleave reads frame-interleaved src with srcChannels channels into
// the block and returns the number of frames read. Surplus source channels
// are dropped; block channels without a source channel are zeroed. The
// block is not resized.
func Deinterleave[T Sample](b *Block, src []T, srcChannels int) int {
	if srcChannels <= 0 {
		return 0
	}

	frames := min(b.frames, len(src)/srcChannels)
	for c, ch := range b.channels {
		if c >= srcChannels {
			clear(ch[:frames])
			continue
		}
		for i := range frames {
			ch[i] = float64(src[i*srcChannels+c])
		}
	}

	return frames
}
