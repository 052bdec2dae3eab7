package buffer

import "sync"

// Pool reuses Blocks between decode/process/encode rounds of the offline
// renderer. It must not be used from the audio callback.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return New(0, 0)
			},
		},
	}
}

// Get returns a zeroed Block with the requested shape.
// Callers must return it via Put when done.
func (p *Pool) Get(channels, frames int) *Block {
	b := p.pool.Get().(*Block)
	if b.NumChannels() != channels {
		b = New(channels, frames)
	}
	b.Resize(frames)
	b.Zero()

	return b
}

// Put returns a Block to the pool for reuse.
// The caller must not use the block after calling Put.
func (p *Pool) Put(b *Block) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}
