package dictionary

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFilesMergesInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	first := writeFile(t, dir, "a.txt", "apple 30\napply 10\nbroken\n")
	second := writeFile(t, dir, "b.txt", "apple 99\nappetite 5\n")

	m := metrics.New()
	loader := NewLoader(WithConcurrency(2), WithLoaderMetrics(m))
	result, err := loader.LoadFiles(context.Background(), first, second)
	require.NoError(t, err)

	assert.Equal(t, []suggest.Entry{
		{Word: "apple", Frequency: 30},
		{Word: "apply", Frequency: 10},
		{Word: "apple", Frequency: 99},
		{Word: "appetite", Frequency: 5},
	}, result.Entries)
	assert.Equal(t, Stats{Files: 2, Lines: 5, Accepted: 4, Skipped: 1}, result.Stats)

	// last file wins once inserted
	c := suggest.NewCompleter()
	_, err = c.Load(result.Entries)
	require.NoError(t, err)
	got, err := c.Complete("apple", 5)
	require.NoError(t, err)
	assert.Equal(t, []suggest.Entry{{Word: "apple", Frequency: 99}}, got)

	series, err := testutil.GatherAndCount(m.Registry(), "wordrank_loader_lines_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestLoadFilesExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "words.txt", "zeta 1\n")
	writeFile(t, dir, "notes.md", "ignored 100\n")

	_, err := WriteChunks(dir, []suggest.Entry{
		{Word: "alpha", Frequency: 3},
		{Word: "beta", Frequency: 2},
		{Word: "gamma", Frequency: 1},
	}, 2)
	require.NoError(t, err)

	result, err := NewLoader().LoadFiles(context.Background(), dir)
	require.NoError(t, err)

	// dict_0001.bin, dict_0002.bin, words.txt
	assert.Equal(t, []suggest.Entry{
		{Word: "alpha", Frequency: 3},
		{Word: "beta", Frequency: 2},
		{Word: "gamma", Frequency: 1},
		{Word: "zeta", Frequency: 1},
	}, result.Entries)
	assert.Equal(t, 3, result.Stats.Files)
}

func TestLoadFilesMaxWords(t *testing.T) {
	path := writeFile(t, t.TempDir(), "w.txt", "a 1\nb 2\nc 3\n")

	result, err := NewLoader(WithMaxWords(2)).LoadFiles(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
}

func TestLoadFilesErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	good := writeFile(t, dir, "ok.txt", "a 1\n")
	unknown := writeFile(t, dir, "words.csv", "a,1\n")

	_, err := NewLoader().LoadFiles(context.Background(), good, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = NewLoader().LoadFiles(context.Background(), unknown)
	assert.Error(t, err)

	_, err = NewLoader().LoadFiles(context.Background(), t.TempDir())
	assert.Error(t, err, "empty directory")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLoader().LoadFiles(ctx, good)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChunkRoundTrip(t *testing.T) {
	entries := []suggest.Entry{
		{Word: "naïve", Frequency: 4},
		{Word: "the", Frequency: 2000000},
		{Word: "zero", Frequency: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, entries))

	got, stats, err := ReadChunk(&buf, "mem")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	assert.Equal(t, Stats{Lines: 3, Accepted: 3}, stats)
}

func TestChunkKeepsLargeFrequencies(t *testing.T) {
	entries := []suggest.Entry{
		{Word: "of", Frequency: 3000000000},
		{Word: "the", Frequency: 23135851162},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, entries))

	got, stats, err := ReadChunk(&buf, "mem")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	assert.Equal(t, Stats{Lines: 2, Accepted: 2}, stats)
}

func TestWriteChunkRejectsNegativeFrequency(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChunk(&buf, []suggest.Entry{{Word: "bad", Frequency: -1}})
	assert.Error(t, err)
}

func TestBundledDictionaryRoundTrip(t *testing.T) {
	file, err := os.Open(filepath.Join("..", "..", "data", "dictionary.txt"))
	require.NoError(t, err)
	defer file.Close()

	entries, _, err := ReadText(file, "dictionary.txt", true)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	dir := t.TempDir()
	paths, err := WriteChunks(dir, entries, 500)
	require.NoError(t, err)

	result, err := NewLoader().LoadFiles(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, paths, (len(entries)+499)/500)
	assert.Equal(t, len(entries), result.Stats.Accepted)
	assert.Zero(t, result.Stats.Skipped)
	assert.ElementsMatch(t, entries, result.Entries)
}

func TestReadChunkRejectsBadHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(-1)))
	_, _, err := ReadChunk(&buf, "neg")
	assert.Error(t, err)

	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(maxChunkEntries+1)))
	_, _, err = ReadChunk(&buf, "huge")
	assert.Error(t, err)
}

func TestReadChunkTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, []suggest.Entry{{Word: "one", Frequency: 1}}))
	data := buf.Bytes()
	// header claims 2 entries, body holds 1
	binary.LittleEndian.PutUint32(data[:4], 2)

	got, _, err := ReadChunk(bytes.NewReader(data), "short")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, _, err = ReadChunk(bytes.NewReader(data[:len(data)-2]), "cut")
	assert.Error(t, err)
}

func TestDetectAndValidate(t *testing.T) {
	dir := t.TempDir()

	f, err := DetectFormat("dict_0001.bin")
	require.NoError(t, err)
	assert.Equal(t, FormatChunk, f)

	f, err = DetectFormat("words.TXT")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = DetectFormat("words.json")
	assert.Error(t, err)

	tiny := writeFile(t, dir, "dict_0009.bin", "ab")
	assert.Error(t, ValidateFile(tiny, FormatChunk))

	assert.Error(t, ValidateFile(dir, FormatText))
	assert.Equal(t, "dict_0012.bin", ChunkFileName(12))
}

func TestWriteChunksRejectsBadSize(t *testing.T) {
	_, err := WriteChunks(t.TempDir(), nil, 0)
	assert.Error(t, err)
}
