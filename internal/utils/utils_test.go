package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWord(t *testing.T) {
	testCases := []struct {
		in        string
		lowercase bool
		want      string
	}{
		{"  Apple ", true, "apple"},
		{"Apple", false, "Apple"},
		{"don't", true, "dont"},
		{"co-op!", true, "coop"},
		{"snake_case", true, "snake_case"},
		{"Café", true, "café"},
		{"...", true, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeWord(tc.in, tc.lowercase))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "app", NormalizePrefix("  APP\n", true))
	assert.Equal(t, "A-p", NormalizePrefix(" A-p ", false))
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "65,535", FormatWithCommas(65535))
	assert.Equal(t, "1,234,567", FormatWithCommas(1234567))
	assert.Equal(t, "-12,000", FormatWithCommas(-12000))
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
	assert.Empty(t, CreateRankList(0))
}

func TestIsValidInput(t *testing.T) {
	assert.True(t, IsValidInput("hello"))
	assert.True(t, IsValidInput("ice-cream"))
	assert.False(t, IsValidInput(""))
	assert.False(t, IsValidInput("1234"))
	assert.False(t, IsValidInput("he@llo"))
	assert.False(t, IsValidInput("www"))
	assert.True(t, IsValidInput("ww"))
}

func TestTOMLHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[dict]\npaths = [\"a.txt\", \"b.txt\"]\nbackend = \"trie\"\nmax_words = 10\nlowercase = true\n"), 0644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	section, ok := ExtractSection(data, "dict")
	require.True(t, ok)

	paths, ok := ExtractStringSlice(section, "paths")
	assert.True(t, ok)
	assert.Equal(t, []string{"a.txt", "b.txt"}, paths)

	backend, ok := ExtractString(section, "backend")
	assert.True(t, ok)
	assert.Equal(t, "trie", backend)

	n, ok := ExtractInt64(section, "max_words")
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	b, ok := ExtractBool(section, "lowercase")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = ExtractInt64(section, "backend")
	assert.False(t, ok)
}

func TestSaveTOMLFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, EnsureDir(dir))
	path := filepath.Join(dir, "out.toml")

	type doc struct {
		Name string `toml:"name"`
	}
	require.NoError(t, SaveTOMLFile(doc{Name: "wordrank"}, path))
	assert.True(t, FileExists(path))

	var got doc
	require.NoError(t, LoadTOMLFile(path, &got))
	assert.Equal(t, "wordrank", got.Name)
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "dict.txt")
	assert.Equal(t, abs, ResolvePath(abs))
	assert.Equal(t, "does/not/exist.txt", ResolvePath("does/not/exist.txt"))
}
