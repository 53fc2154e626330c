package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatChunk              // Chunked binary format
	FormatText               // Plain text format
)

// maxChunkEntries is a sanity bound on a chunk header.
const maxChunkEntries = 1000000

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatChunk: {
		Format:      FormatChunk,
		Description: "Chunked Binary Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // At least word count header
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt"},
		MinSize:     0,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// ChunkFileName returns the canonical name of chunk id, e.g. dict_0001.bin.
func ChunkFileName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// DetectFormat picks a format from the file name.
func DetectFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".bin":
		return FormatChunk, nil
	case ".txt":
		return FormatText, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// ValidateFile checks size and, for chunks, the header of filename against format.
func ValidateFile(filename string, format FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[format]
	if !exists {
		return fmt.Errorf("unknown format: %v", format)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if format != FormatChunk {
		return nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	count, err := readChunkHeader(file)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	log.Debugf("Binary file %s validated: %d words", filename, count)
	return nil
}

func readChunkHeader(r io.Reader) (int, error) {
	var wordCount int32
	if err := binary.Read(r, binary.LittleEndian, &wordCount); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if wordCount < 0 {
		return 0, fmt.Errorf("invalid word count %d (negative)", wordCount)
	}
	if wordCount > maxChunkEntries {
		return 0, fmt.Errorf("suspicious word count %d (too large)", wordCount)
	}
	return int(wordCount), nil
}

// ReadChunk decodes a binary chunk: an int32 entry count, then per entry a uint16 word
// length, the word bytes and a uint64 frequency, all little-endian. Empty words, and
// frequencies that do not fit an int on this platform, are skipped and counted like
// malformed text lines.
func ReadChunk(r io.Reader, name string) ([]suggest.Entry, Stats, error) {
	var stats Stats
	reader := bufio.NewReader(r)

	count, err := readChunkHeader(reader)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", name, err)
	}

	entries := make([]suggest.Entry, 0, count)
	for i := 0; i < count; i++ {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				log.Warnf("%s: header promised %d words, found %d", name, count, i)
				break
			}
			return nil, stats, fmt.Errorf("%s: failed to read word length: %w", name, err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, stats, fmt.Errorf("%s: failed to read word: %w", name, err)
		}

		var freq uint64
		if err := binary.Read(reader, binary.LittleEndian, &freq); err != nil {
			return nil, stats, fmt.Errorf("%s: failed to read frequency: %w", name, err)
		}

		stats.Lines++
		if wordLen == 0 || freq > math.MaxInt {
			stats.Skipped++
			continue
		}
		entries = append(entries, suggest.Entry{Word: string(wordBytes), Frequency: int(freq)})
		stats.Accepted++
	}
	return entries, stats, nil
}

// WriteChunk encodes entries in the layout ReadChunk expects.
func WriteChunk(w io.Writer, entries []suggest.Entry) error {
	if len(entries) > maxChunkEntries {
		return fmt.Errorf("chunk of %d entries exceeds limit %d", len(entries), maxChunkEntries)
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Word) > math.MaxUint16 {
			return fmt.Errorf("word %.20q... is longer than %d bytes", e.Word, math.MaxUint16)
		}
		if e.Frequency < 0 {
			return fmt.Errorf("word %q: negative frequency %d", e.Word, e.Frequency)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(e.Frequency)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteChunks splits entries into files of chunkSize entries named dict_0001.bin,
// dict_0002.bin, ... inside dir and returns the paths written.
func WriteChunks(dir string, entries []suggest.Entry, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var paths []string
	for id, start := 1, 0; start < len(entries); id, start = id+1, start+chunkSize {
		end := min(start+chunkSize, len(entries))
		path := filepath.Join(dir, ChunkFileName(id))
		if err := writeChunkFile(path, entries[start:end]); err != nil {
			return paths, err
		}
		log.Debugf("Wrote chunk %s with %d words", path, end-start)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeChunkFile(path string, entries []suggest.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteChunk(file, entries); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
