// Package ui provides the Bubbletea terminal editor for LudEQ: one row per
// parameter, output meters and a live magnitude-response strip.
package ui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/measure/level"
)

const (
	// FrameInterval is the refresh period of meters and curve.
	FrameInterval = 50 * time.Millisecond

	// MeterFalloff is the meter release rate in dB per second.
	MeterFalloff = 24.0

	defaultCurveWidth = 60
	minCurveWidth     = 16
	curveLowHz        = 20.0
	curveHighHz       = 20000.0
)

// Transport is the playback control the editor toggles with the space bar.
type Transport interface {
	Play()
	Pause()
	IsPlaying() bool
}

// Option configures a Model.
type Option func(*Model)

// WithMeter shows per-channel output levels taken from m.
func WithMeter(m *level.Meter) Option {
	return func(model *Model) {
		model.meter = m
		if m != nil {
			model.Falloffs = make([]level.Falloff, m.Channels())
			for i := range model.Falloffs {
				model.Falloffs[i].Rate = MeterFalloff
			}
		}
	}
}

// WithTransport enables play/pause.
func WithTransport(t Transport) Option {
	return func(m *Model) { m.transport = t }
}

// WithSampleRate sets the rate used to draw the response curve.
func WithSampleRate(sr float64) Option {
	return func(m *Model) {
		if sr > 0 {
			m.SampleRate = sr
		}
	}
}

// WithTitle sets the subtitle shown under the header, typically the input
// file name.
func WithTitle(title string) Option {
	return func(m *Model) { m.Title = title }
}

// Model is the Bubbletea model for the live editor.
type Model struct {
	store     *eq.Store
	meter     *level.Meter
	transport Transport

	Layout   []eq.ParamSpec
	Selected int

	// Parameter snapshot and curve as of Version.
	Params  eq.Parameters
	Version uint64
	Curve   []float64

	Falloffs   []level.Falloff
	readings   []level.Reading
	lastTick   time.Time
	SampleRate float64

	Title  string
	Status string

	Done bool
	Err  error

	Width  int
	Height int
}

// NewModel creates an editor bound to store.
func NewModel(store *eq.Store, opts ...Option) Model {
	m := Model{
		store:      store,
		Layout:     eq.Layout(),
		SampleRate: 48000,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.refresh(true)

	return m
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles key presses, ticks and playback events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.refresh(true)

	case TickMsg:
		m.updateMeters(time.Time(msg))
		m.refresh(false)
		return m, tick()

	case StatusMsg:
		m.Status = string(msg)

	case PlaybackDoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.Done = true
		return m, tea.Quit

	case "up", "k":
		m.Selected = (m.Selected + len(m.Layout) - 1) % len(m.Layout)
	case "down", "j", "tab":
		m.Selected = (m.Selected + 1) % len(m.Layout)

	case "right", "l", "+", "=":
		m.nudge(1, false)
	case "left", "h", "-":
		m.nudge(-1, false)
	case "shift+right", "L", "pgup":
		m.nudge(1, true)
	case "shift+left", "H", "pgdown":
		m.nudge(-1, true)

	case "0", "d":
		spec := m.Layout[m.Selected]
		m.store.Set(spec.ID, spec.Default)
	case "r":
		m.store.Reset()

	case " ":
		if m.transport != nil {
			if m.transport.IsPlaying() {
				m.transport.Pause()
			} else {
				m.transport.Play()
			}
		}
	}

	m.refresh(false)

	return m, nil
}

// nudge moves the selected parameter one step in dir. Frequencies move in
// musical intervals (a semitone, or an octave when coarse); everything
// else moves by its step, or ten steps when coarse.
func (m *Model) nudge(dir float64, coarse bool) {
	spec := m.Layout[m.Selected]
	v := m.store.Get(spec.ID)

	switch {
	case spec.Unit == "Hz":
		interval := 1.0 / 12
		if coarse {
			interval = 1
		}
		next := v * math.Pow(2, dir*interval)
		// Low frequencies move less than one step per semitone.
		if math.Abs(next-v) < spec.Step {
			next = v + dir*spec.Step
		}
		v = next
	case coarse && !spec.IsChoice():
		v += dir * 10 * spec.Step
	default:
		v += dir * spec.Step
	}

	m.store.Set(spec.ID, spec.Clamp(v))
}

// refresh reloads the parameter snapshot and recomputes the curve when the
// store changed or force is set.
func (m *Model) refresh(force bool) {
	v := m.store.Version()
	if !force && v == m.Version && m.Curve != nil {
		return
	}

	m.Version = v
	m.Params = m.store.Snapshot()

	curve, err := eq.Response(m.Params, m.SampleRate, eq.LogFrequencies(curveLowHz, curveHighHz, m.curveWidth()))
	if err != nil {
		m.Curve = nil
		return
	}
	m.Curve = curve
}

func (m *Model) curveWidth() int {
	if m.Width <= 0 {
		return defaultCurveWidth
	}

	return max(minCurveWidth, min(m.Width-8, 120))
}

func (m *Model) updateMeters(now time.Time) {
	if m.meter == nil {
		return
	}

	dt := FrameInterval
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick)
	}
	m.lastTick = now

	m.readings = m.meter.TakeAll(m.readings)
	for i, r := range m.readings {
		if i < len(m.Falloffs) {
			m.Falloffs[i].Next(r.PeakDB(), dt)
		}
	}
}
