// Package editor holds the single-writer editing session: the current
// document, the datastore cache and the observers notified on commit.
package editor

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/metrics"
	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/rdfa"
	"github.com/c360studio/semdoc/term"
)

// DefaultCacheSize is the number of document states whose datastore is kept.
const DefaultCacheSize = 8

// Event describes a committed document change. Transaction is nil for Load.
type Event struct {
	Before      *model.Document
	After       *model.Document
	Transaction *model.Transaction
}

// Session owns one editable document. All mutation goes through Load and
// Apply; readers get immutable snapshots.
type Session struct {
	mu      sync.RWMutex
	factory *term.Factory
	logger  *slog.Logger
	metrics *metrics.Collector
	parse   []rdfa.Option

	doc     *model.Document
	mapping *model.Mapping

	cacheSize  int
	cache      map[*model.Document]*datastore.Datastore
	cacheOrder []*model.Document

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSub     int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics records parses, transactions and cache lookups.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) {
		s.metrics = c
	}
}

// WithFactory shares a term factory. By default each session owns a fresh one.
func WithFactory(f *term.Factory) Option {
	return func(s *Session) {
		s.factory = f
	}
}

// WithParseOptions sets the options used for every parse and serialization.
func WithParseOptions(opts ...rdfa.Option) Option {
	return func(s *Session) {
		s.parse = append(s.parse, opts...)
	}
}

// WithCacheSize bounds the datastore cache.
func WithCacheSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// NewSession creates a session holding an empty document.
func NewSession(opts ...Option) *Session {
	s := &Session{
		cacheSize:   DefaultCacheSize,
		cache:       make(map[*model.Document]*datastore.Datastore),
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = term.NewFactory()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.doc = model.NewDocument(model.Element("div", nil))
	return s
}

func (s *Session) rdfaOptions() []rdfa.Option {
	opts := append([]rdfa.Option{}, s.parse...)
	opts = append(opts, rdfa.WithFactory(s.factory), rdfa.WithLogger(s.logger))
	if s.metrics != nil {
		opts = append(opts, rdfa.WithRecorder(s.metrics))
	}
	return opts
}

// Factory returns the session's term factory.
func (s *Session) Factory() *term.Factory {
	return s.factory
}

// Load replaces the document with the parsed contents of r.
func (s *Session) Load(r io.Reader) error {
	p, err := rdfa.Parse(r, s.rdfaOptions()...)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	s.mu.Lock()
	before := s.doc
	s.doc = p.Document
	s.mapping = nil
	s.remember(p.Document, p.Datastore)
	s.mu.Unlock()

	s.logger.Debug("document loaded",
		slog.Int("quads", p.Datastore.Len()),
		slog.Int("recoveries", p.Recoveries))
	s.notify(Event{Before: before, After: p.Document})
	return nil
}

// LoadString is Load over a string.
func (s *Session) LoadString(src string) error {
	return s.Load(strings.NewReader(src))
}

// Document returns the current document.
func (s *Session) Document() *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Datastore returns the datastore of the current document.
func (s *Session) Datastore() *datastore.Datastore {
	return s.DatastoreFor(s.Document())
}

// DatastoreFor returns the datastore of doc, building and caching it on
// first use. Repeated calls for one document state return the same value.
func (s *Session) DatastoreFor(doc *model.Document) *datastore.Datastore {
	s.mu.RLock()
	ds, ok := s.cache[doc]
	s.mu.RUnlock()
	s.metrics.ObserveCache(ok)
	if ok {
		return ds
	}

	ds = rdfa.Extract(doc, s.rdfaOptions()...)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[doc]; ok {
		return cached
	}
	s.remember(doc, ds)
	return ds
}

// remember caches ds for doc. Callers hold mu.
func (s *Session) remember(doc *model.Document, ds *datastore.Datastore) {
	if _, ok := s.cache[doc]; !ok {
		s.cacheOrder = append(s.cacheOrder, doc)
	}
	s.cache[doc] = ds
	for len(s.cacheOrder) > s.cacheSize {
		evict := s.cacheOrder[0]
		s.cacheOrder = s.cacheOrder[1:]
		delete(s.cache, evict)
	}
}

// Transaction starts a transaction on the current document.
func (s *Session) Transaction() *model.Transaction {
	return model.NewTransaction(s.Document())
}

// Apply commits tr. The resulting document is normalized so its properties
// and backlinks agree with its markup, then observers are notified.
func (s *Session) Apply(tr *model.Transaction) error {
	if err := tr.Err(); err != nil {
		s.metrics.ObserveTransaction(metrics.OutcomeRejected)
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	s.mu.Lock()
	if tr.Before() != s.doc {
		s.mu.Unlock()
		s.metrics.ObserveTransaction(metrics.OutcomeRejected)
		return ErrStaleTransaction
	}
	if !tr.DocChanged() {
		s.mu.Unlock()
		s.metrics.ObserveTransaction(metrics.OutcomeNoop)
		return nil
	}

	p := rdfa.Normalize(tr.Doc(), s.rdfaOptions()...)
	before := s.doc
	s.doc = p.Document
	s.mapping = tr.Mapping()
	s.remember(p.Document, p.Datastore)
	s.mu.Unlock()

	s.metrics.ObserveTransaction(metrics.OutcomeApplied)
	s.logger.Debug("transaction applied",
		slog.Int("steps", len(tr.Steps())),
		slog.Int("quads", p.Datastore.Len()))
	s.notify(Event{Before: before, After: p.Document, Transaction: tr})
	return nil
}

// MapPosition maps a position in the document before the last commit to
// the current document. Positions pass through unchanged after Load.
func (s *Session) MapPosition(pos model.Position, bias model.Bias) model.Position {
	s.mu.RLock()
	m := s.mapping
	s.mu.RUnlock()
	if m == nil {
		return pos
	}
	return m.Map(pos, bias)
}

// Render writes the current document as HTML+RDFa.
func (s *Session) Render(w io.Writer) error {
	return rdfa.Render(w, s.Document(), s.rdfaOptions()...)
}

// Subscribe registers fn for commit events and returns a function that
// removes it. Observers run synchronously after the commit, outside the
// session lock, so they may read the session.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) notify(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subscribers[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
