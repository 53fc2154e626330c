// Package dictionary reads word frequency vocabularies from text and binary chunk files.
package dictionary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Loader reads vocabularies into entries ready for a suggest.Completer.
type Loader struct {
	lowercase   bool
	maxWords    int
	concurrency int
	metrics     *metrics.Metrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLowercase folds words to lower case while parsing text files.
func WithLowercase(on bool) LoaderOption {
	return func(l *Loader) { l.lowercase = on }
}

// WithMaxWords caps the number of entries returned; 0 means no cap.
func WithMaxWords(n int) LoaderOption {
	return func(l *Loader) { l.maxWords = n }
}

// WithConcurrency bounds how many files are read at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) { l.concurrency = n }
}

// WithLoaderMetrics counts accepted and skipped lines on m.
func WithLoaderMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader creates a loader that lowercases words by default.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		lowercase:   true,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		l.concurrency = 1
	}
	return l
}

// Result is the merged output of a load.
type Result struct {
	Entries []suggest.Entry
	Stats   Stats
}

// LoadFiles reads every path concurrently. Directories expand to their *.txt and
// dict_*.bin files in name order. Entries are concatenated in argument order, so a word
// defined in several files keeps the frequency from the last one once inserted.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (*Result, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dictionary files found in %v", paths)
	}

	type part struct {
		entries []suggest.Entry
		stats   Stats
	}
	parts := make([]part, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries, stats, err := l.LoadFile(file)
			if err != nil {
				return err
			}
			parts[i] = part{entries: entries, stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, p := range parts {
		result.Entries = append(result.Entries, p.entries...)
		result.Stats.add(p.stats)
	}

	if l.maxWords > 0 && len(result.Entries) > l.maxWords {
		log.Debugf("Capping vocabulary at %d of %d entries", l.maxWords, len(result.Entries))
		result.Entries = result.Entries[:l.maxWords]
	}

	l.metrics.AddLoaderLines(metrics.LineAccepted, result.Stats.Accepted)
	l.metrics.AddLoaderLines(metrics.LineSkipped, result.Stats.Skipped)
	log.Debugf("Loaded %d files: %d lines, %d accepted, %d skipped",
		result.Stats.Files, result.Stats.Lines, result.Stats.Accepted, result.Stats.Skipped)
	return result, nil
}

// LoadFile reads one text or chunk file.
func (l *Loader) LoadFile(path string) ([]suggest.Entry, Stats, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, Stats{}, err
	}
	if err := ValidateFile(path, format); err != nil {
		return nil, Stats{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var (
		entries []suggest.Entry
		stats   Stats
	)
	switch format {
	case FormatChunk:
		entries, stats, err = ReadChunk(file, path)
	default:
		entries, stats, err = ReadText(file, path, l.lowercase)
	}
	if err != nil {
		return nil, stats, err
	}
	stats.Files = 1
	log.Debugf("Read %s (%s): %d entries", path, format, len(entries))
	return entries, stats, nil
}

// expandPaths replaces directories with the dictionary files they contain.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		for _, pattern := range []string{"*.txt", "dict_*.bin"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", p, err)
			}
			found = append(found, matches...)
		}
		sort.Strings(found)
		log.Debugf("Found %d dictionary files in %s", len(found), p)
		files = append(files, found...)
	}
	return files, nil
}
