package suggest

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// PatriciaIndex is an Index backed by a compressed patricia trie.
// It trades the per-rune node maps of Trie for shared byte-prefix edges,
// which keeps memory lower on large vocabularies. Keys are the UTF-8 bytes of each word;
// since UTF-8 is self-synchronizing, byte prefixes of valid strings match rune prefixes.
type PatriciaIndex struct {
	trie  *patricia.Trie
	words int
}

// NewPatriciaIndex creates an empty patricia-backed index.
func NewPatriciaIndex() *PatriciaIndex {
	return &PatriciaIndex{trie: patricia.NewTrie()}
}

// Insert stores word with frequency, overwriting an existing entry.
func (p *PatriciaIndex) Insert(word string, frequency int) error {
	if err := validateEntry("insert", word, frequency); err != nil {
		return err
	}
	key := patricia.Prefix(word)
	if p.trie.Get(key) == nil {
		p.words++
	}
	p.trie.Set(key, frequency)
	return nil
}

// Query visits the subtree under prefix and ranks every word found there.
func (p *PatriciaIndex) Query(prefix string, limit int) ([]Entry, error) {
	if err := validateLimit("query", limit); err != nil {
		return nil, err
	}
	if !utf8.ValidString(prefix) {
		return []Entry{}, nil
	}

	var entries []Entry
	err := p.trie.VisitSubtree(patricia.Prefix(prefix), func(key patricia.Prefix, item patricia.Item) error {
		freq, err := itemFrequency(item)
		if err != nil {
			return fmt.Errorf("word %q: %w", key, err)
		}
		entries = append(entries, Entry{Word: string(key), Frequency: freq})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting patricia subtree: %v", err)
		return nil, err
	}

	return rankEntries(entries, limit), nil
}

// Lookup returns the frequency stored for word.
func (p *PatriciaIndex) Lookup(word string) (int, bool) {
	if word == "" {
		return 0, false
	}
	item := p.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	freq, err := itemFrequency(item)
	if err != nil {
		return 0, false
	}
	return freq, true
}

// Remove deletes word; patricia merges the emptied edges itself.
func (p *PatriciaIndex) Remove(word string) bool {
	if word == "" {
		return false
	}
	if !p.trie.Delete(patricia.Prefix(word)) {
		return false
	}
	p.words--
	return true
}

// Len returns the number of distinct words.
func (p *PatriciaIndex) Len() int {
	return p.words
}

func itemFrequency(item patricia.Item) (int, error) {
	switch v := item.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case uint32:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unknown item type %T", item)
	}
}
