package buffer

// Block is a planar multichannel block of float64 samples.
//
// Channel i occupies data[i*stride : i*stride+frames]. Resizing within the
// stride never reallocates.
type Block struct {
	data     []float64
	channels [][]float64
	stride   int
	frames   int
}

// New returns a zero-filled Block. Negative sizes are treated as zero.
func New(channels, frames int) *Block {
	channels = max(channels, 0)
	frames = max(frames, 0)

	b := &Block{
		data:     make([]float64, channels*frames),
		channels: make([][]float64, channels),
		stride:   frames,
		frames:   frames,
	}
	b.slice()

	return b
}

func (b *Block) slice() {
	for i := range b.channels {
		off := i * b.stride
		b.channels[i] = b.data[off : off+b.frames : off+b.stride]
	}
}

// Channels returns the per-channel views. The outer slice is owned by the
// Block and stays valid until the next Resize that grows past Cap.
func (b *Block) Channels() [][]float64 {
	return b.channels
}

// Channel returns the samples of channel i.
func (b *Block) Channel(i int) []float64 {
	return b.channels[i]
}

// NumChannels returns the channel count.
func (b *Block) NumChannels() int {
	return len(b.channels)
}

// Frames returns the current number of samples per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Cap returns the number of frames the Block can hold without reallocating.
func (b *Block) Cap() int {
	return b.stride
}

// Resize sets the frame count, reusing capacity when possible.
// Newly exposed frames are zeroed; existing frames are preserved.
func (b *Block) Resize(frames int) {
	frames = max(frames, 0)
	old := b.frames

	if frames > b.stride {
		data := make([]float64, len(b.channels)*frames)
		for i, ch := range b.channels {
			copy(data[i*frames:], ch)
		}
		b.data = data
		b.stride = frames
	}

	b.frames = frames
	b.slice()

	if frames > old {
		for _, ch := range b.channels {
			clear(ch[old:])
		}
	}
}

// Zero sets every sample to 0.
func (b *Block) Zero() {
	for _, ch := range b.channels {
		clear(ch)
	}
}

// Copy returns a deep copy of the block.
func (b *Block) Copy() *Block {
	c := New(len(b.channels), b.frames)
	for i, ch := range b.channels {
		copy(c.channels[i], ch)
	}

	return c
}
