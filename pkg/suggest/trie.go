package suggest

import (
	"fmt"
	"unicode/utf8"
)

// node is one symbol step in the trie. Children are owned exclusively by their parent.
type node struct {
	children  map[rune]*node
	terminal  bool
	frequency int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie is the rune-keyed prefix index. The root stands for the empty prefix and is never terminal.
//
// A Trie is meant to be filled once and then queried; it does not lock.
// Use a Completer when queries and inserts may overlap.
type Trie struct {
	root  *node
	words int
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// Insert walks or creates the path for word and marks its last node terminal with frequency.
// Inserting an existing word overwrites its frequency. Arguments are validated before the
// trie is touched, so a rejected insert leaves it unchanged.
func (t *Trie) Insert(word string, frequency int) error {
	if err := validateEntry("insert", word, frequency); err != nil {
		return err
	}

	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}

	if !n.terminal {
		t.words++
	}
	n.terminal = true
	n.frequency = frequency
	return nil
}

// Query returns the top limit entries under prefix. A prefix that leads nowhere yields an
// empty slice and no error; only a non-positive limit is an error.
func (t *Trie) Query(prefix string, limit int) ([]Entry, error) {
	if err := validateLimit("query", limit); err != nil {
		return nil, err
	}

	anchor := t.find(prefix)
	if anchor == nil {
		return []Entry{}, nil
	}
	return rankEntries(collect(anchor, prefix), limit), nil
}

// Lookup returns the frequency stored for word.
func (t *Trie) Lookup(word string) (int, bool) {
	n := t.find(word)
	if n == nil || !n.terminal {
		return 0, false
	}
	return n.frequency, true
}

// Remove unmarks word and prunes the chain of ancestors left without children or words.
func (t *Trie) Remove(word string) bool {
	if word == "" || !utf8.ValidString(word) {
		return false
	}

	type step struct {
		parent *node
		symbol rune
	}
	path := make([]step, 0, len(word))

	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			return false
		}
		path = append(path, step{parent: n, symbol: r})
		n = child
	}
	if !n.terminal {
		return false
	}

	n.terminal = false
	n.frequency = 0
	t.words--

	for i := len(path) - 1; i >= 0; i-- {
		if n.terminal || len(n.children) > 0 {
			break
		}
		delete(path[i].parent.children, path[i].symbol)
		n = path[i].parent
	}
	return true
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return t.words
}

// find descends along prefix and returns the node reached, or nil.
func (t *Trie) find(prefix string) *node {
	if !utf8.ValidString(prefix) {
		return nil
	}
	n := t.root
	for _, r := range prefix {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

type frame struct {
	n      *node
	symbol rune
	depth  int
}

// collect enumerates every terminal at or below anchor with an explicit stack,
// so very deep words cannot exhaust the goroutine stack. Words are rebuilt in one
// shared buffer: a frame's depth is the buffer length of its parent's path.
func collect(anchor *node, prefix string) []Entry {
	var entries []Entry
	buf := []byte(prefix)
	if anchor.terminal {
		entries = append(entries, Entry{Word: prefix, Frequency: anchor.frequency})
	}

	stack := make([]frame, 0, len(anchor.children))
	for r, child := range anchor.children {
		stack = append(stack, frame{n: child, symbol: r, depth: len(buf)})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		buf = utf8.AppendRune(buf[:f.depth], f.symbol)
		if f.n.terminal {
			entries = append(entries, Entry{Word: string(buf), Frequency: f.n.frequency})
		}
		for r, child := range f.n.children {
			stack = append(stack, frame{n: child, symbol: r, depth: len(buf)})
		}
	}
	return entries
}

func validateEntry(op, word string, frequency int) error {
	if word == "" {
		return invalid(op, "word", "must not be empty")
	}
	if !utf8.ValidString(word) {
		return invalid(op, "word", "must be valid UTF-8")
	}
	if frequency < 0 {
		return invalid(op, "frequency", fmt.Sprintf("must be non-negative, got %d", frequency))
	}
	return nil
}

func validateLimit(op string, limit int) error {
	if limit <= 0 {
		return invalid(op, "limit", fmt.Sprintf("must be positive, got %d", limit))
	}
	return nil
}
