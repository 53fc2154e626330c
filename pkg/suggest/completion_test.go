package suggest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleterLoad(t *testing.T) {
	c := NewCompleter()

	stats, err := c.Load([]Entry{
		{"apple", 30}, {"application", 15}, {"", 4}, {"apply", 10}, {"bad", -1}, {"appetite", 5},
	})
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Inserted: 4, Rejected: 2}, stats)

	got, err := c.Complete("app", 2)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{"apple", 30}, {"application", 15}}, got)

	assert.Equal(t, Stats{TotalWords: 4, MaxFrequency: 30, Backend: BackendTrie}, c.Stats())
}

func TestCompleterErrors(t *testing.T) {
	c := NewCompleter(WithIndex(NewPatriciaIndex()))
	require.NoError(t, c.AddWord("go", 3))

	_, err := c.Complete("g", 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = c.AddWord("", 1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	got, err := c.Complete("rust", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, BackendPatricia, c.Stats().Backend)
}

func TestCompleterLookupRemove(t *testing.T) {
	c := NewCompleter()
	require.NoError(t, c.AddWord("zebra", 8))

	freq, ok := c.Lookup("zebra")
	require.True(t, ok)
	assert.Equal(t, 8, freq)

	assert.True(t, c.Remove("zebra"))
	assert.False(t, c.Remove("zebra"))
	assert.Equal(t, 0, c.Stats().TotalWords)
	assert.Equal(t, 8, c.Stats().MaxFrequency)
}

func TestCompleterConcurrentReaders(t *testing.T) {
	c := NewCompleter(WithMetrics(metrics.New()))
	entries := make([]Entry, 0, 500)
	for i := 0; i < 500; i++ {
		entries = append(entries, Entry{Word: fmt.Sprintf("word%03d", i), Frequency: i})
	}
	_, err := c.Load(entries)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if w == 0 && i%20 == 0 {
					_ = c.AddWord(fmt.Sprintf("extra%d", i), i)
				}
				got, err := c.Complete("word4", 3)
				if assert.NoError(t, err) && assert.Len(t, got, 3) {
					assert.Equal(t, "word499", got[0].Word)
				}
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 510, c.Stats().TotalWords)
}
