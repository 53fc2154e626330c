// Package suggest is the core, providing the trie traversals and ranked retrievals for prefix queries.
package suggest

// DefaultLimit is the number of suggestions callers ask for when they have no preference.
const DefaultLimit = 5

// Entry is a materialized word and its frequency, produced at query time.
type Entry struct {
	Word      string `json:"word" msgpack:"w"`
	Frequency int    `json:"frequency" msgpack:"f"`
}

// Index defines the contract shared by every prefix index backend.
// Implementations are not safe for concurrent mutation; wrap them in a Completer.
type Index interface {
	// Insert stores word with frequency, overwriting any earlier frequency for the same word.
	Insert(word string, frequency int) error

	// Query returns at most limit entries whose word starts with prefix,
	// by frequency descending and word ascending on ties.
	Query(prefix string, limit int) ([]Entry, error)

	// Lookup returns the frequency of an exact word.
	Lookup(word string) (int, bool)

	// Remove deletes an exact word and reports whether it was present.
	Remove(word string) bool

	// Len returns the number of distinct words.
	Len() int
}

// ICompleter is what the CLI and IPC server need from a completer.
type ICompleter interface {
	// Complete returns suggestions for a given prefix with a limit
	Complete(prefix string, limit int) ([]Entry, error)

	// Stats returns statistics about the loaded dictionary
	Stats() Stats
}

var _ ICompleter = (*Completer)(nil)
var _ Index = (*Trie)(nil)
var _ Index = (*PatriciaIndex)(nil)
