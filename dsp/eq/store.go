package eq

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// maxLoadAttempts bounds the reader retry loop in Load so the audio
// goroutine never spins on a busy writer.
const maxLoadAttempts = 4

// Store is the parameter store shared between control goroutines and the
// audio goroutine.
//
// Every value is kept as float64 bits in an atomic word. A sequence
// counter brackets each write (odd while a write is in progress), so a
// reader can detect and discard a snapshot that mixes two writes. Writers
// are serialized by a mutex that the audio side never touches.
type Store struct {
	seq    atomic.Uint64
	values [NumParams]atomic.Uint64

	mu       sync.Mutex
	logger   *slog.Logger
	warned   [NumParams]bool
	watchers map[int]func(Parameters)
	nextID   int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for clamp warnings. The default discards.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInitial seeds the store with p instead of the layout defaults.
// Values are snapped and clamped.
func WithInitial(p Parameters) StoreOption {
	return func(s *Store) {
		for i := range s.values {
			id := ParamID(i)
			s.values[i].Store(math.Float64bits(layout[i].Snap(p.Value(id))))
		}
	}
}

// NewStore returns a Store holding the layout defaults.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger:   slog.New(slog.DiscardHandler),
		watchers: make(map[int]func(Parameters)),
	}
	for i := range s.values {
		s.values[i].Store(math.Float64bits(layout[i].Default))
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Load copies a consistent snapshot into dst and reports whether it did.
// Load is wait-free and allocation-free: after a bounded number of torn
// reads it gives up and leaves dst unchanged, so the caller keeps using
// its previous snapshot for one more block.
func (s *Store) Load(dst *Parameters) bool {
	var raw [NumParams]uint64
	for range maxLoadAttempts {
		before := s.seq.Load()
		if before&1 != 0 {
			continue
		}
		for i := range raw {
			raw[i] = s.values[i].Load()
		}
		if s.seq.Load() != before {
			continue
		}

		for i, bits := range raw {
			dst.Set(ParamID(i), math.Float64frombits(bits))
		}

		return true
	}

	return false
}

// Snapshot returns a consistent copy of all parameters. Unlike Load it
// waits for a concurrent writer, so it is meant for control goroutines.
func (s *Store) Snapshot() Parameters {
	var p Parameters
	if s.Load(&p) {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Load(&p)

	return p
}

// Get returns one parameter value.
func (s *Store) Get(id ParamID) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	return math.Float64frombits(s.values[id].Load())
}

// Version returns a counter that changes with every completed write.
func (s *Store) Version() uint64 {
	return s.seq.Load() / 2
}

// Set snaps v to the parameter's step and range, stores it and returns the
// applied value. A value outside the range is clamped and logged once per
// parameter. Unknown ids are ignored and return NaN.
func (s *Store) Set(id ParamID, v float64) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	s.mu.Lock()
	applied := s.snapLocked(id, v)
	s.writeLocked(func() {
		s.values[id].Store(math.Float64bits(applied))
	})
	snap := s.snapshotLocked()
	watchers := s.watchersLocked()
	s.mu.Unlock()

	notify(watchers, snap)

	return applied
}

// SetNormalized sets id from a host-normalized value in [0, 1].
func (s *Store) SetNormalized(id ParamID, n float64) float64 {
	if !id.Valid() {
		return math.NaN()
	}

	return s.Set(id, layout[id].Denormalize(n))
}

// SetParameters replaces every value in one write, so a reader sees either
// all old or all new values.
func (s *Store) SetParameters(p Parameters) Parameters {
	var applied Parameters

	s.mu.Lock()
	for i := range layout {
		id := ParamID(i)
		applied.Set(id, s.snapLocked(id, p.Value(id)))
	}
	s.writeLocked(func() {
		for i := range s.values {
			s.values[i].Store(math.Float64bits(applied.Value(ParamID(i))))
		}
	})
	watchers := s.watchersLocked()
	s.mu.Unlock()

	notify(watchers, applied)

	return applied
}

// Reset restores the layout defaults.
func (s *Store) Reset() {
	s.SetParameters(DefaultParameters())
}

// Watch registers fn to be called with the new snapshot after every write.
// fn runs on the writing goroutine, outside the store lock. The returned
// function removes the watcher.
func (s *Store) Watch(fn func(Parameters)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapLocked(id ParamID, v float64) float64 {
	spec := &layout[id]
	if !spec.InRange(v) && !s.warned[id] {
		s.warned[id] = true
		s.logger.Warn("parameter out of range, clamping",
			"param", spec.Name,
			"value", v,
			"min", spec.Min,
			"max", spec.Max)
	}

	return spec.Snap(v)
}

func (s *Store) writeLocked(write func()) {
	s.seq.Add(1)
	write()
	s.seq.Add(1)
}

func (s *Store) snapshotLocked() Parameters {
	var p Parameters
	for i := range s.values {
		p.Set(ParamID(i), math.Float64frombits(s.values[i].Load()))
	}

	return p
}

func (s *Store) watchersLocked() []func(Parameters) {
	if len(s.watchers) == 0 {
		return nil
	}

	out := make([]func(Parameters), 0, len(s.watchers))
	for _, fn := range s.watchers {
		out = append(out, fn)
	}

	return out
}

func notify(watchers []func(Parameters), p Parameters) {
	for _, fn := range watchers {
		fn(p)
	}
}
