package term

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Factory mints fresh blank node labels and rdfaIds. Each editor session owns
// one Factory so independent sessions in one process never collide.
type Factory struct {
	mu     sync.Mutex
	prefix string
	next   uint64
	issued map[string]struct{}
}

// NewFactory creates a factory with a random blank-node label prefix.
func NewFactory() *Factory {
	return NewFactoryWithPrefix("b" + uuid.New().String()[:8])
}

// NewFactoryWithPrefix creates a factory with a fixed blank-node label prefix.
// Tests use it to get predictable labels.
func NewFactoryWithPrefix(prefix string) *Factory {
	return &Factory{
		prefix: prefix,
		issued: make(map[string]struct{}),
	}
}

// BlankNode mints a blank node with a label unique to this factory.
func (f *Factory) BlankNode() Term {
	f.mu.Lock()
	defer f.mu.Unlock()
	label := fmt.Sprintf("%s_%d", f.prefix, f.next)
	f.next++
	return BlankNode(label)
}

// NewRdfaID mints a fresh rdfaId. Ids are never handed out twice by one factory.
func (f *Factory) NewRdfaID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		id := uuid.New().String()
		if _, seen := f.issued[id]; !seen {
			f.issued[id] = struct{}{}
			return id
		}
	}
}

// Observe records an rdfaId read from a document so it is never minted.
func (f *Factory) Observe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued[id] = struct{}{}
}

// Reset clears the counters. Only valid between independent document sessions.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = 0
	f.issued = make(map[string]struct{})
}
