package rdfa

import (
	"log/slog"
	"time"

	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

// Input modes.
const (
	// ModeFragment tokenizes the input without HTML5 tree construction.
	// Self-closing tags are honoured and no implied elements are inserted.
	ModeFragment = "fragment"

	// ModeHTML5 parses the input with the full HTML5 algorithm.
	ModeHTML5 = "html5"
)

// DefaultIDAttribute carries the rdfaId of a structural node in HTML.
const DefaultIDAttribute = "__rdfaid"

// DefaultMaxDepth bounds element nesting in fragment mode.
const DefaultMaxDepth = 512

// Recorder receives parse statistics. metrics.Collector implements it.
type Recorder interface {
	ObserveParse(d time.Duration, quads, recoveries int)
}

// Options configure parsing and serialization.
type Options struct {
	// BaseIRI resolves relative IRIs and stands in for a missing subject.
	BaseIRI string

	// Language is the default document language.
	Language string

	// IDAttribute is the attribute holding rdfaIds.
	IDAttribute string

	// Prefixes are layered over the default prefix table.
	Prefixes vocabulary.Prefixes

	// Mode is ModeFragment or ModeHTML5.
	Mode string

	// MaxDepth bounds nesting in fragment mode. Deeper elements are flattened
	// into their ancestor at the limit.
	MaxDepth int

	// Factory mints blank nodes and rdfaIds. Sessions share theirs.
	Factory *term.Factory

	Logger   *slog.Logger
	Recorder Recorder
}

// Option configures Options.
type Option func(*Options)

// WithBaseIRI sets the base IRI.
func WithBaseIRI(iri string) Option {
	return func(o *Options) {
		o.BaseIRI = iri
	}
}

// WithLanguage sets the default document language.
func WithLanguage(lang string) Option {
	return func(o *Options) {
		o.Language = lang
	}
}

// WithIDAttribute sets the rdfaId attribute name.
func WithIDAttribute(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.IDAttribute = name
		}
	}
}

// WithPrefixes adds prefix declarations.
func WithPrefixes(p map[string]string) Option {
	return func(o *Options) {
		o.Prefixes = o.Prefixes.Merge(p)
	}
}

// WithMode selects the input mode.
func WithMode(mode string) Option {
	return func(o *Options) {
		if mode != "" {
			o.Mode = mode
		}
	}
}

// WithMaxDepth bounds fragment nesting.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}

// WithFactory shares a term factory.
func WithFactory(f *term.Factory) Option {
	return func(o *Options) {
		o.Factory = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRecorder sets the statistics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Options) {
		o.Recorder = r
	}
}

func newOptions(opts []Option) Options {
	o := Options{
		IDAttribute: DefaultIDAttribute,
		Prefixes:    vocabulary.Prefixes{},
		Mode:        ModeFragment,
		MaxDepth:    DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Factory == nil {
		o.Factory = term.NewFactory()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Apply returns the options as a single Option, for passing resolved options along.
func (o Options) Apply() Option {
	return func(dst *Options) {
		*dst = o
	}
}
