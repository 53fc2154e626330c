package suggest

import (
	"errors"
	"sync"
	"time"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/charmbracelet/log"
)

// Backend names accepted by NewIndex.
const (
	BackendTrie     = "trie"
	BackendPatricia = "patricia"
)

// NewIndex returns an empty index for the named backend.
func NewIndex(backend string) (Index, error) {
	switch backend {
	case "", BackendTrie:
		return NewTrie(), nil
	case BackendPatricia:
		return NewPatriciaIndex(), nil
	default:
		return nil, invalid("new index", "backend", "unknown backend "+backend)
	}
}

// Completer guards an Index so that queries may run concurrently with each other
// while loads and inserts get exclusive access. A reader never observes a half-applied insert.
type Completer struct {
	mu           sync.RWMutex
	index        Index
	backend      string
	maxFrequency int
	metrics      *metrics.Metrics
}

// Option configures a Completer.
type Option func(*Completer)

// WithIndex swaps the default Trie for another backend.
func WithIndex(idx Index) Option {
	return func(c *Completer) {
		c.index = idx
		switch idx.(type) {
		case *PatriciaIndex:
			c.backend = BackendPatricia
		case *Trie:
			c.backend = BackendTrie
		default:
			c.backend = "custom"
		}
	}
}

// WithMetrics records query and index metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Completer) {
		c.metrics = m
	}
}

// NewCompleter creates a Completer backed by a Trie unless WithIndex says otherwise.
func NewCompleter(opts ...Option) *Completer {
	c := &Completer{
		index:   NewTrie(),
		backend: BackendTrie,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats summarizes the loaded vocabulary.
type Stats struct {
	TotalWords   int    `json:"totalWords" msgpack:"total_words"`
	MaxFrequency int    `json:"maxFrequency" msgpack:"max_frequency"`
	Backend      string `json:"backend" msgpack:"backend"`
}

// LoadStats reports the outcome of a bulk load.
type LoadStats struct {
	Inserted int
	Rejected int
}

// AddWord inserts a single word.
func (c *Completer) AddWord(word string, frequency int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.index.Insert(word, frequency); err != nil {
		return err
	}
	if frequency > c.maxFrequency {
		c.maxFrequency = frequency
	}
	c.metrics.SetIndexWords(c.index.Len())
	return nil
}

// Load bulk inserts entries under one write lock. Entries the index rejects are
// counted and logged rather than aborting the whole load.
func (c *Completer) Load(entries []Entry) (LoadStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats LoadStats
	for _, e := range entries {
		if err := c.index.Insert(e.Word, e.Frequency); err != nil {
			if !errors.Is(err, ErrInvalidInput) {
				return stats, err
			}
			log.Debugf("Rejected entry %q: %v", e.Word, err)
			stats.Rejected++
			continue
		}
		if e.Frequency > c.maxFrequency {
			c.maxFrequency = e.Frequency
		}
		stats.Inserted++
	}

	c.metrics.SetIndexWords(c.index.Len())
	log.Debugf("Loaded %d entries (%d rejected), index holds %d words", stats.Inserted, stats.Rejected, c.index.Len())
	return stats, nil
}

// Complete returns the top limit entries for prefix.
func (c *Completer) Complete(prefix string, limit int) ([]Entry, error) {
	start := time.Now()

	c.mu.RLock()
	entries, err := c.index.Query(prefix, limit)
	c.mu.RUnlock()

	elapsed := time.Since(start)
	switch {
	case err != nil:
		c.metrics.ObserveQuery(metrics.OutcomeInvalid, elapsed, 0)
		return nil, err
	case len(entries) == 0:
		c.metrics.ObserveQuery(metrics.OutcomeMiss, elapsed, 0)
	default:
		c.metrics.ObserveQuery(metrics.OutcomeHit, elapsed, len(entries))
	}
	return entries, nil
}

// Lookup returns the frequency of an exact word.
func (c *Completer) Lookup(word string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.Lookup(word)
}

// Remove deletes an exact word. MaxFrequency keeps reporting the highest frequency ever loaded.
func (c *Completer) Remove(word string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.index.Remove(word)
	if removed {
		c.metrics.SetIndexWords(c.index.Len())
	}
	return removed
}

// Stats returns a snapshot of the vocabulary size.
func (c *Completer) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		TotalWords:   c.index.Len(),
		MaxFrequency: c.maxFrequency,
		Backend:      c.backend,
	}
}
