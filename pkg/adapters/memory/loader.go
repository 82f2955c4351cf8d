package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Loader implements ports.FlowLoader over a document held in memory,
// typically the one being edited. It also implements ports.Watchable:
// every Update signals the watchers.
type Loader struct {
	mu       sync.RWMutex
	raw      []byte
	watchers []chan struct{}
}

// NewLoader creates a loader serving a copy of doc.
func NewLoader(doc *document.Document) (*Loader, error) {
	l := &Loader{}
	if err := l.Update(doc); err != nil {
		return nil, err
	}
	return l, nil
}

// NewFromGraph creates a loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromGraph(g *domain.Graph) (*Loader, error) {
	return NewLoader(document.FromGraph(g))
}

// NewFromBytes creates a loader from an encoded document.
func NewFromBytes(data []byte, format document.Format) (*Loader, error) {
	doc, err := document.DecodeBytes(data, format)
	if err != nil {
		return nil, err
	}
	return NewLoader(doc)
}

// Update replaces the served document and notifies watchers.
func (l *Loader) Update(doc *document.Document) error {
	if err := doc.Check(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := doc.Encode(&buf, document.FormatJSON); err != nil {
		return fmt.Errorf("failed to snapshot document: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.raw = buf.Bytes()
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Load returns a fresh copy of the current document.
func (l *Loader) Load(_ context.Context) (*document.Document, error) {
	l.mu.RLock()
	raw := l.raw
	l.mu.RUnlock()
	return document.DecodeBytes(raw, document.FormatJSON)
}

// Source implements ports.FlowLoader.
func (l *Loader) Source() string { return "memory" }

// Watch returns a channel signaled after every Update.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
