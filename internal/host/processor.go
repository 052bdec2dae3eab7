package host

import (
	"fmt"

	"github.com/W47K3R9/LudEQ/dsp/core"
	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/measure/level"
)

// Processor couples a parameter store with an engine and a level meter.
// Prepare runs on the control side; Process runs on the audio side.
type Processor struct {
	store  *eq.Store
	engine *eq.Engine
	meter  *level.Meter

	// params is the audio side's current snapshot. It survives a torn
	// Load, so a block always has a complete parameter set.
	params eq.Parameters
}

// NewProcessor returns an unprepared processor reading from store.
func NewProcessor(store *eq.Store) *Processor {
	return &Processor{
		store:  store,
		engine: eq.NewEngine(),
		meter:  level.NewMeter(0),
		params: store.Snapshot(),
	}
}

// Prepare readies the engine and the output meter for a stream format.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize, channels int) error {
	if err := p.engine.Prepare(sampleRate, maxBlockSize, channels); err != nil {
		return fmt.Errorf("host: prepare: %w", err)
	}

	p.meter = level.NewMeter(channels)
	p.params = p.store.Snapshot()

	return nil
}

// PrepareConfig is Prepare for a core.ProcessorConfig.
func (p *Processor) PrepareConfig(cfg core.ProcessorConfig) error {
	return p.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.Channels)
}

// streamConfig is the processing format for a source read in blocks of
// blockSize frames.
func streamConfig(meta Metadata, blockSize int) core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(float64(meta.SampleRate)),
		core.WithBlockSize(blockSize),
		core.WithChannels(meta.Channels),
	)
}

// Process filters buf in place with the latest parameters and meters the
// result. It does not allocate or lock.
func (p *Processor) Process(buf [][]float64) {
	p.store.Load(&p.params)
	p.engine.ProcessBlock(buf, p.params)
	p.meter.Update(buf)
}

// Reset clears filter history, e.g. before playback restarts.
func (p *Processor) Reset() {
	p.engine.Reset()
}

// Store returns the parameter store.
func (p *Processor) Store() *eq.Store { return p.store }

// Engine returns the underlying engine.
func (p *Processor) Engine() *eq.Engine { return p.engine }

// Meter returns the output meter. It is replaced by Prepare.
func (p *Processor) Meter() *level.Meter { return p.meter }
