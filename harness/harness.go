// Package harness is the public entry point: it parses an HTML document,
// builds a DOM, evaluates its inline scripts against the simulated
// platform, and exposes the small imperative API (from_html, click,
// assert_text, advance_time, run_due_timers, pending_timers) test authors
// drive. The Harness owns all of its state; nothing here is a
// process-wide global, so two Harnesses never interfere.
package harness

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	null "gopkg.in/guregu/null.v3"

	"github.com/mstoykov/envconfig"

	"github.com/domharness/domharness/internal/htmlparse"
	"github.com/domharness/domharness/internal/jseval"
	"github.com/domharness/domharness/internal/jsparse"
)

// Config holds the small set of knobs from_html respects, populated from
// DOMHARNESS_* environment variables the way the teacher's cmd/state
// reads K6_* vars into GlobalFlags.
type Config struct {
	RandomSeed null.Int    `envconfig:"DOMHARNESS_RANDOM_SEED"`
	LogLevel   null.String `envconfig:"DOMHARNESS_LOG_LEVEL"`
}

// DefaultConfig returns the zero-env defaults: a fixed RNG seed (for
// deterministic Math.random() across runs) and a quiet log level.
func DefaultConfig() Config {
	return Config{
		RandomSeed: null.IntFrom(1),
		LogLevel:   null.StringFrom("warn"),
	}
}

// Apply overlays other's explicitly-set fields onto c, leaving fields
// other didn't set untouched.
func (c Config) Apply(other Config) Config {
	if other.RandomSeed.Valid {
		c.RandomSeed = other.RandomSeed
	}
	if other.LogLevel.Valid {
		c.LogLevel = other.LogLevel
	}
	return c
}

func configFromEnv() (Config, error) {
	cfg := DefaultConfig()
	var envCfg Config
	if err := envconfig.Process("", &envCfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg.Apply(envCfg), nil
}

// Option customizes a Harness at construction time.
type Option func(*options)

type options struct {
	config    Config
	configSet bool
	logger    *logrus.Logger
	console   io.Writer
}

// WithConfig overrides the environment-derived Config entirely.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
		o.configSet = true
	}
}

// WithLogger attaches a logger for Harness-internal Debug/Warn lines (DOM
// mutations, scheduler drains, held promise rejections). The default is a
// logrus.Logger writing to io.Discard — the harness is a library, it
// never touches os.Stdout on its own.
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithConsoleOutput redirects console.log/warn/error/… calls made by
// scripts under test to w, instead of discarding them.
func WithConsoleOutput(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// Harness owns one document's DOM, scheduler, and evaluator. All state is
// instance-local: running two Harnesses in one process never interferes.
type Harness struct {
	interp *jseval.Interp
	log    *logrus.Logger
	config Config
}

func defaultLogger() *logrus.Logger {
	return &logrus.Logger{
		Out:       io.Discard,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}
}

// New implements from_html: parses html, builds the DOM, wires the global
// environment (document, window, console, timers, Promise, Intl, …), and
// evaluates every <script> block in document order. A DOMContentLoaded
// listener registered before the last script, and a load listener, both
// fire before New returns.
func New(html string, opts ...Option) (*Harness, error) {
	o := &options{logger: defaultLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if !o.configSet {
		cfg, err := configFromEnv()
		if err != nil {
			return nil, err
		}
		o.config = cfg
	}
	if lvl, err := logrus.ParseLevel(o.config.LogLevel.ValueOrZero()); err == nil {
		o.logger.SetLevel(lvl)
	}

	dom, scripts, err := htmlparse.Parse(html)
	if err != nil {
		return nil, wrapHtmlParse(err)
	}

	seed := o.config.RandomSeed.ValueOrZero()
	interp := jseval.New(dom, seed)
	if o.console != nil {
		interp.SetConsoleOutput(o.console)
	}

	h := &Harness{interp: interp, log: o.logger, config: o.config}

	for _, s := range scripts {
		program, err := jsparse.Parse(s.Source)
		if err != nil {
			return nil, wrapScriptParse(err)
		}
		h.log.WithField("node", s.NodeId).Debug("evaluating inline script")
		if err := interp.Run(program); err != nil {
			return nil, wrapScriptRuntime(err)
		}
	}

	if err := interp.FireDOMContentLoaded(); err != nil {
		return nil, wrapScriptRuntime(err)
	}
	if err := interp.FireLoad(); err != nil {
		return nil, wrapScriptRuntime(err)
	}

	return h, nil
}
