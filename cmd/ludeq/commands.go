package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/internal/cli"
	"github.com/W47K3R9/LudEQ/internal/host"
	"github.com/W47K3R9/LudEQ/internal/remote"
	"github.com/W47K3R9/LudEQ/internal/ui"
	"github.com/W47K3R9/LudEQ/measure/response"
)

type paramsCmd struct {
	JSON bool `env:"LUDEQ_JSON" help:"Print the state document instead of a table."`
	Save bool `env:"LUDEQ_SAVE" help:"Write the values, including --set overrides, to the state file."`
}

func (c *paramsCmd) Run(rc *runContext) error {
	if c.JSON {
		data, err := rc.store.MarshalState()
		if err != nil {
			return err
		}
		fmt.Fprintln(rc.stdout, string(data))
	} else {
		cli.PrintParams(rc.stdout, rc.store.Snapshot())
	}

	if c.Save {
		if rc.statePath == "" {
			return errors.New("--save needs a state file")
		}
		return saveState(rc.store, rc.statePath, rc.logger)
	}

	return nil
}

type responseCmd struct {
	Freq       []float64 `short:"f" sep:"," env:"LUDEQ_FREQ" help:"Frequencies to evaluate in Hz."`
	Points     int       `default:"31" env:"LUDEQ_POINTS" help:"Number of log-spaced points from 20 Hz to 20 kHz when --freq is not given."`
	SampleRate float64   `default:"48000" env:"LUDEQ_SAMPLE_RATE" help:"Sample rate in Hz."`
	Measured   bool      `env:"LUDEQ_MEASURED" help:"Measure the FFT of the engine's impulse response instead of evaluating the filters."`
}

// measureLength is the impulse response length for --measured.
const measureLength = 1 << 16

func (c *responseCmd) Run(rc *runContext) error {
	freqs := c.Freq
	if len(freqs) == 0 {
		freqs = eq.LogFrequencies(20, 20000, c.Points)
	}
	p := rc.store.Snapshot()

	var (
		gains []float64
		err   error
	)
	if c.Measured {
		gains, err = measureResponse(p, c.SampleRate, freqs)
	} else {
		gains, err = eq.Response(p, c.SampleRate, freqs)
	}
	if err != nil {
		return err
	}

	cli.PrintResponse(rc.stdout, freqs, gains)

	return nil
}

// measureResponse runs an impulse through a fresh engine and reads the
// gains off its spectrum.
func measureResponse(p eq.Parameters, sampleRate float64, freqs []float64) ([]float64, error) {
	engine := eq.NewEngine()
	if err := engine.Prepare(sampleRate, measureLength, 1); err != nil {
		return nil, err
	}

	ir := make([]float64, measureLength)
	ir[0] = 1
	engine.ProcessBlock([][]float64{ir}, p)

	spec, err := response.Analyze(ir, sampleRate, measureLength)
	if err != nil {
		return nil, err
	}

	gains := make([]float64, len(freqs))
	for i, f := range freqs {
		gains[i] = spec.MagnitudeDBAt(f)
	}

	return gains, nil
}

type renderCmd struct {
	Input     string `arg:"" type:"existingfile" help:"Input WAV or MP3 file."`
	Output    string `arg:"" help:"Output WAV file."`
	Bits      int    `default:"0" env:"LUDEQ_BITS" help:"Output bit depth: 16, 24 or 32. 0 keeps the input depth."`
	BlockSize int    `default:"512" env:"LUDEQ_BLOCK_SIZE" help:"Processing block size in frames."`
	Force     bool   `env:"LUDEQ_FORCE" help:"Overwrite an existing output file."`
	Quiet     bool   `short:"q" env:"LUDEQ_QUIET" help:"Do not print progress or the summary."`
}

func (c *renderCmd) Run(rc *runContext) error {
	if !c.Force {
		if _, err := os.Stat(c.Output); err == nil {
			return fmt.Errorf("%s exists, use --force to overwrite", c.Output)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []host.RenderOption{
		host.WithBlockSize(c.BlockSize),
		host.WithBitDepth(c.Bits),
		host.WithLogger(rc.logger),
	}
	if !c.Quiet {
		opts = append(opts, host.WithProgress(progressPrinter(rc)))
	}

	proc := host.NewProcessor(rc.store)
	stats, err := host.RenderFile(ctx, c.Input, c.Output, proc, opts...)
	if !c.Quiet {
		fmt.Fprintln(rc.stderr)
	}
	if err != nil {
		return err
	}

	if !c.Quiet {
		cli.PrintRenderSummary(rc.stdout, c.Input, c.Output, stats)
	}

	return nil
}

// progressPrinter returns a render progress callback that redraws a
// percentage line on stderr whenever it changes.
func progressPrinter(rc *runContext) func(done, total int64) {
	last := -1

	return func(done, total int64) {
		if total <= 0 {
			return
		}
		pct := int(done * 100 / total)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(rc.stderr, "\rRendering %3d%%", pct)
	}
}

type liveCmd struct {
	Input     string `arg:"" optional:"" type:"existingfile" help:"WAV or MP3 file to play. Without it only the editor runs."`
	BlockSize int    `default:"512" env:"LUDEQ_BLOCK_SIZE" help:"Processing block size in frames."`
	LogFile   string `type:"path" env:"LUDEQ_LOG_FILE" help:"Append logs to this file while the editor runs."`
	NoSave    bool   `env:"LUDEQ_NO_SAVE" help:"Do not write the state file on exit."`

	MQTTBroker    string `name:"mqtt-broker" env:"LUDEQ_MQTT_BROKER" help:"MQTT broker for remote automation, e.g. localhost or ssl://host:8883."`
	MQTTPort      int    `name:"mqtt-port" default:"1883" env:"LUDEQ_MQTT_PORT" help:"MQTT port when the broker address has none."`
	MQTTUser      string `name:"mqtt-user" env:"LUDEQ_MQTT_USER" help:"MQTT user name."`
	MQTTPassword  string `name:"mqtt-password" env:"LUDEQ_MQTT_PASSWORD" help:"MQTT password."`
	MQTTPrefix    string `name:"mqtt-prefix" default:"ludeq" env:"LUDEQ_MQTT_PREFIX" help:"MQTT topic prefix."`
	MQTTDiscovery bool   `name:"mqtt-discovery" env:"LUDEQ_MQTT_DISCOVERY" help:"Publish Home Assistant discovery documents."`
}

func (c *liveCmd) Run(rc *runContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts []ui.Option

	var player *host.Player
	if c.Input != "" {
		src, err := host.OpenSource(c.Input)
		if err != nil {
			return err
		}
		defer src.Close()

		proc := host.NewProcessor(rc.store)
		player, err = host.NewPlayer(src, proc, c.BlockSize)
		if err != nil {
			return err
		}
		defer player.Close()

		opts = append(opts,
			ui.WithMeter(proc.Meter()),
			ui.WithTransport(player),
			ui.WithTitle(filepath.Base(c.Input)),
			ui.WithSampleRate(float64(src.Metadata().SampleRate)))
	}

	model := ui.NewModel(rc.store, opts...)

	if c.MQTTBroker != "" {
		client, err := remote.Dial(ctx, remote.Config{
			Broker:    c.MQTTBroker,
			Port:      c.MQTTPort,
			Username:  c.MQTTUser,
			Password:  c.MQTTPassword,
			Prefix:    c.MQTTPrefix,
			Discovery: c.MQTTDiscovery,
		}, rc.store, rc.logger)
		if err != nil {
			cli.PrintWarning(rc.stderr, err.Error())
			model.Status = "mqtt: offline"
		} else {
			defer client.Close()
			model.Status = fmt.Sprintf("mqtt: %s/<param>/set", client.Prefix())
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if player != nil {
		player.Play()
		go func() {
			err := player.Wait(ctx)
			if errors.Is(err, context.Canceled) {
				return
			}
			p.Send(ui.PlaybackDoneMsg{Err: err})
		}()
	}

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted) {
		return fmt.Errorf("ui: %w", err)
	}

	if !c.NoSave && rc.statePath != "" {
		if err := saveState(rc.store, rc.statePath, rc.logger); err != nil {
			return err
		}
	}

	if m, ok := final.(ui.Model); ok && m.Err != nil {
		return m.Err
	}

	return nil
}
