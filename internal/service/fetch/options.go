package fetch

type runConfig struct {
	force    bool
	observer Observer
}

// Option adjusts a single run.
type Option func(c *runConfig)

// WithForce removes present artifacts and downloads them again.
func WithForce() Option {
	return func(c *runConfig) {
		c.force = true
	}
}

// WithObserver streams run events to fn.
func WithObserver(fn Observer) Option {
	return func(c *runConfig) {
		c.observer = fn
	}
}

func newRunConfig(opts ...Option) *runConfig {
	c := &runConfig{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *runConfig) notify(ev Event) {
	if c.observer != nil {
		c.observer(ev)
	}
}
