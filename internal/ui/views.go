package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/W47K3R9/LudEQ/measure/level"
)

const (
	curveRows     = 6
	curveTopDB    = 12.0
	curveBottomDB = -24.0

	meterWidth = 40
	meterFloor = -60.0

	sliderWidth = 24
)

var (
	accentColor = lipgloss.Color("#00AAAA")
	warnColor   = lipgloss.Color("#FFA500")
	hotColor    = lipgloss.Color("#A40000")
	mutedColor  = lipgloss.Color("#888888")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(warnColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(hotColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

var blocks = []rune(" ▁▂▃▄▅▆▇█")

// View renders the editor.
func (m Model) View() string {
	if m.Done {
		if m.Err != nil {
			return errorStyle.Render("Playback failed: ") + m.Err.Error() + "\n"
		}
		return ""
	}

	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(renderParams(m)))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(renderCurve(m.Curve)))
	b.WriteString("\n")
	if len(m.Falloffs) > 0 {
		b.WriteString(boxStyle.Render(renderMeters(m.Falloffs)))
		b.WriteString("\n")
	}
	b.WriteString(renderFooter(m))

	return b.String()
}

func renderHeader(m Model) string {
	title := titleStyle.Render("LudEQ - 3-band parametric equalizer")
	sub := fmt.Sprintf("%.0f Hz", m.SampleRate)
	if m.Title != "" {
		sub = m.Title + " | " + sub
	}
	if m.transport != nil && !m.transport.IsPlaying() {
		sub += " | paused"
	}

	return title + "\n" + subtitleStyle.Render(sub)
}

func renderParams(m Model) string {
	var b strings.Builder

	for i, spec := range m.Layout {
		v := m.Params.Value(spec.ID)

		cursor := "  "
		name := fmt.Sprintf("%-15s", spec.Name)
		value := fmt.Sprintf("%10s", spec.Format(v))
		if i == m.Selected {
			cursor = selectedStyle.Render("▸ ")
			name = selectedStyle.Render(name)
			value = selectedStyle.Render(value)
		}

		b.WriteString(cursor)
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("  ")
		b.WriteString(renderSlider(spec.Normalize(v), sliderWidth))
		if i < len(m.Layout)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderSlider draws a position in [0, 1].
func renderSlider(pos float64, width int) string {
	filled := int(math.Round(pos * float64(width)))
	filled = max(0, min(width, filled))

	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

// renderCurve draws the response as a block plot spanning curveBottomDB to
// curveTopDB, with a label column on the left.
func renderCurve(curve []float64) string {
	if len(curve) == 0 {
		return mutedStyle.Render("no response")
	}

	rows := plotRows(curve, curveRows, curveBottomDB, curveTopDB)
	step := (curveTopDB - curveBottomDB) / curveRows

	var b strings.Builder
	for i, row := range rows {
		top := curveTopDB - float64(i)*step
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%+4.0f ", top)))
		b.WriteString(row)
		b.WriteString("\n")
	}

	axis := fmt.Sprintf("%-*s%s", len(curve)-3, "20Hz", "20k")
	b.WriteString(mutedStyle.Render("     " + axis))

	return b.String()
}

// plotRows renders values as rows of block characters, top row first.
// Each row covers (hi-lo)/rows dB in eight sub-steps.
func plotRows(values []float64, rows int, lo, hi float64) []string {
	out := make([]string, rows)
	levels := float64(rows * 8)

	for r := range rows {
		var b strings.Builder
		floor := float64((rows - 1 - r) * 8)
		for _, v := range values {
			h := 0.0
			if !math.IsNaN(v) {
				h = (math.Max(lo, math.Min(hi, v)) - lo) / (hi - lo) * levels
			}
			cell := int(math.Round(h - floor))
			b.WriteRune(blocks[max(0, min(8, cell))])
		}
		out[r] = b.String()
	}

	return out
}

func renderMeters(falloffs []level.Falloff) string {
	var b strings.Builder

	for i := range falloffs {
		db := falloffs[i].Value()
		b.WriteString(fmt.Sprintf("ch%-2d ", i+1))
		b.WriteString(renderMeter(db, meterWidth))
		b.WriteString(fmt.Sprintf(" %6.1f dB", math.Max(db, meterFloor)))
		if i < len(falloffs)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderMeter(db float64, width int) string {
	pos := (math.Max(meterFloor, math.Min(0, db)) - meterFloor) / -meterFloor
	filled := int(math.Round(pos * float64(width)))

	style := lipgloss.NewStyle().Foreground(accentColor)
	switch {
	case db >= -0.1:
		style = style.Foreground(hotColor)
	case db >= -6:
		style = style.Foreground(warnColor)
	}

	return style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func renderFooter(m Model) string {
	help := "↑/↓ select  ←/→ adjust  shift+←/→ coarse  0 default  r reset all"
	if m.transport != nil {
		help += "  space play/pause"
	}
	help += "  q quit"

	out := mutedStyle.Render(help)
	if m.Status != "" {
		out = subtitleStyle.Render(m.Status) + "\n" + out
	}

	return out
}
