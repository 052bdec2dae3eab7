package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/internal/host"
)

// PrintParams prints one line per parameter with its current value, range
// and slug.
func PrintParams(w io.Writer, p eq.Parameters) {
	layout := eq.Layout()

	width := 0
	for _, spec := range layout {
		width = max(width, len(spec.Name))
	}

	for _, spec := range layout {
		var rng string
		if spec.IsChoice() {
			rng = strings.Join(spec.Choices, " | ")
		} else {
			rng = fmt.Sprintf("%s .. %s", spec.Format(spec.Min), spec.Format(spec.Max))
		}

		fmt.Fprintf(w, "%s %s  %s %s\n",
			KeyStyle.Render(fmt.Sprintf("%-*s", width, spec.Name)),
			ValueStyle.Render(fmt.Sprintf("%10s", spec.Format(p.Value(spec.ID)))),
			KeyStyle.Render("["+rng+"]"),
			KeyStyle.Render(spec.Slug()))
	}
}

// PrintResponse prints a frequency / gain table.
func PrintResponse(w io.Writer, freqs, gains []float64) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%10s", "Hz")), KeyStyle.Render(fmt.Sprintf("%9s", "dB")))
	for i, f := range freqs {
		if i >= len(gains) {
			break
		}
		fmt.Fprintf(w, "%10.1f %s\n", f, ValueStyle.Render(fmt.Sprintf("%+9.2f", gains[i])))
	}
}

// PrintRenderSummary prints the outcome of an offline render.
func PrintRenderSummary(w io.Writer, in, out string, stats host.RenderStats) {
	fmt.Fprintf(w, "%s %s → %s\n", TitleStyle.UnsetMarginBottom().Render("✓"), filepath.Base(in), filepath.Base(out))
	fmt.Fprintf(w, "%s %s  %s %s\n",
		KeyStyle.Render("Frames:"), ValueStyle.Render(fmt.Sprint(stats.Frames)),
		KeyStyle.Render("Time:"), ValueStyle.Render(stats.Elapsed.Round(time.Millisecond).String()))

	for i, r := range stats.Levels {
		fmt.Fprintf(w, "%s %s  %s %s\n",
			KeyStyle.Render(fmt.Sprintf("ch%d peak:", i+1)), ValueStyle.Render(fmt.Sprintf("%6.1f dBFS", r.PeakDB())),
			KeyStyle.Render("rms:"), ValueStyle.Render(fmt.Sprintf("%6.1f dBFS", r.RMSDB())))
	}

	if stats.Clipped > 0 {
		PrintWarning(w, fmt.Sprintf("%d samples clipped", stats.Clipped))
	}
}
