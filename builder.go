package crossroad

// Builder assembles a Simulation with a fluent interface
type Builder struct {
	cfg       Config
	observers []Observer
	err       error
}

// NewBuilder starts from DefaultConfig
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithConfigFile loads a YAML configuration; a load error is reported by Build
func (b *Builder) WithConfigFile(path string) *Builder {
	cfg, err := LoadConfig(path)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg = cfg
	return b
}

// WithCanvas sets the canvas dimensions
func (b *Builder) WithCanvas(width, height float64) *Builder {
	b.cfg.Width = width
	b.cfg.Height = height
	return b
}

// WithSignalTiming sets the base green, yellow and queue threshold values
func (b *Builder) WithSignalTiming(baseGreen, yellow, queueThreshold int) *Builder {
	b.cfg.BaseGreenTicks = baseGreen
	b.cfg.YellowTicks = yellow
	b.cfg.QueueThreshold = queueThreshold
	return b
}

// WithSpawnInterval sets how many ticks must elapse between spawns
func (b *Builder) WithSpawnInterval(ticks int) *Builder {
	b.cfg.SpawnIntervalTicks = ticks
	return b
}

// WithSeed fixes the random source for reproducible runs
func (b *Builder) WithSeed(seed int64) *Builder {
	b.cfg.Seed = seed
	return b
}

// WithInvariantChecks validates every tick and reports violations to observers
func (b *Builder) WithInvariantChecks() *Builder {
	b.cfg.CheckInvariants = true
	return b
}

// WithObserver registers an observer on the built simulation
func (b *Builder) WithObserver(observer Observer) *Builder {
	if observer != nil {
		b.observers = append(b.observers, observer)
	}
	return b
}

// Build validates the configuration and creates the simulation
func (b *Builder) Build() (*Simulation, error) {
	if b.err != nil {
		return nil, b.err
	}

	sim, err := NewSimulation(b.cfg)
	if err != nil {
		return nil, err
	}
	for _, o := range b.observers {
		sim.AddObserver(o)
	}
	return sim, nil
}
