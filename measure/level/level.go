// Package level provides a lock-free peak and RMS meter for planar audio.
//
// The audio goroutine calls [Meter.Update] once per block; any other
// goroutine calls [Meter.Take] to read and clear the accumulated values.
// Neither side blocks the other.
package level

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"github.com/meko-christian/algo-approx"
)

// MinDB is the floor returned for silence.
const MinDB = -120.0

const dbPerNeper = 20 / math.Ln10

// Reading is the level of one channel since the previous Take.
type Reading struct {
	Peak float64
	RMS  float64
}

// PeakDB returns Peak in dBFS.
func (r Reading) PeakDB() float64 { return ToDB(r.Peak) }

// RMSDB returns RMS in dBFS.
func (r Reading) RMSDB() float64 { return ToDB(r.RMS) }

type channel struct {
	peak  atomic.Uint64 // float64 bits
	sumSq atomic.Uint64 // float64 bits
	n     atomic.Uint64
}

// Meter accumulates per-channel levels.
type Meter struct {
	channels []channel
}

// NewMeter returns a meter for n channels.
func NewMeter(n int) *Meter {
	return &Meter{channels: make([]channel, max(n, 0))}
}

// Channels returns the number of metered channels.
func (m *Meter) Channels() int {
	return len(m.channels)
}

// Update folds one planar block into the meter. Channels beyond the meter's
// count are ignored. Update does not allocate.
func (m *Meter) Update(buf [][]float64) {
	for i, ch := range buf {
		if i >= len(m.channels) || len(ch) == 0 {
			continue
		}

		c := &m.channels[i]
		peak := vecmath.MaxAbs(ch)
		for {
			old := c.peak.Load()
			if math.Float64frombits(old) >= peak {
				break
			}
			if c.peak.CompareAndSwap(old, math.Float64bits(peak)) {
				break
			}
		}

		sq := vecmath.DotProduct(ch, ch)
		for {
			old := c.sumSq.Load()
			if c.sumSq.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+sq)) {
				break
			}
		}
		c.n.Add(uint64(len(ch)))
	}
}

// Take returns the level of channel ch accumulated since the previous Take
// and starts a new measurement window. An unknown channel reads as silence.
func (m *Meter) Take(ch int) Reading {
	if ch < 0 || ch >= len(m.channels) {
		return Reading{}
	}

	c := &m.channels[ch]
	peak := math.Float64frombits(c.peak.Swap(0))
	sumSq := math.Float64frombits(c.sumSq.Swap(0))
	n := c.n.Swap(0)

	r := Reading{Peak: peak}
	if n > 0 {
		r.RMS = math.Sqrt(sumSq / float64(n))
	}

	return r
}

// TakeAll reads every channel into dst, growing it when needed, and
// returns it.
func (m *Meter) TakeAll(dst []Reading) []Reading {
	dst = dst[:0]
	for i := range m.channels {
		dst = append(dst, m.Take(i))
	}

	return dst
}

// ToDB converts a linear amplitude to dBFS, floored at MinDB.
func ToDB(linear float64) float64 {
	if !(linear > 0) || math.IsInf(linear, 0) {
		return MinDB
	}

	return max(MinDB, dbPerNeper*approx.FastLog(linear))
}

// Falloff smooths a level display: rises are shown at once, falls are
// limited to Rate dB per second.
type Falloff struct {
	Rate  float64
	value float64
	init  bool
}

// Next advances the display by dt toward db and returns the shown value.
func (f *Falloff) Next(db float64, dt time.Duration) float64 {
	if !f.init || db >= f.value {
		f.value = db
		f.init = true

		return f.value
	}

	f.value = max(db, f.value-f.Rate*dt.Seconds())

	return f.value
}

// Value returns the last shown level, or MinDB before the first Next.
func (f *Falloff) Value() float64 {
	if !f.init {
		return MinDB
	}

	return f.value
}
