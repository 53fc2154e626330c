package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

// errSkipLine signals that a line carries no entry (blank, comment, malformed).
var errSkipLine = errors.New("skip line")

// Stats counts what a load saw.
type Stats struct {
	Files    int
	Lines    int
	Accepted int
	Skipped  int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Lines += o.Lines
	s.Accepted += o.Accepted
	s.Skipped += o.Skipped
}

// ParseLine turns one `word frequency` line into an entry.
// Blank lines, `#` comments, lines with fewer than two fields, words that normalize to
// nothing, and frequencies that are not non-negative integers all return errSkipLine.
// Fields after the frequency are ignored.
func ParseLine(line string, lowercase bool) (suggest.Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return suggest.Entry{}, errSkipLine
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return suggest.Entry{}, fmt.Errorf("%w: missing frequency", errSkipLine)
	}

	word := utils.NormalizeWord(fields[0], lowercase)
	if word == "" {
		return suggest.Entry{}, fmt.Errorf("%w: empty word", errSkipLine)
	}

	freq, err := strconv.Atoi(fields[1])
	if err != nil {
		return suggest.Entry{}, fmt.Errorf("%w: frequency %q is not a number", errSkipLine, fields[1])
	}
	if freq < 0 {
		return suggest.Entry{}, fmt.Errorf("%w: negative frequency %d", errSkipLine, freq)
	}

	return suggest.Entry{Word: word, Frequency: freq}, nil
}

// ReadText parses a line-oriented vocabulary. Only read errors are returned; malformed
// lines are skipped and counted.
func ReadText(r io.Reader, name string, lowercase bool) ([]suggest.Entry, Stats, error) {
	var (
		entries []suggest.Entry
		stats   Stats
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		entry, err := ParseLine(scanner.Text(), lowercase)
		if err != nil {
			// bare errSkipLine marks blanks and comments, wrapped ones are malformed
			if err != errSkipLine {
				log.Debugf("%s:%d: %v", name, stats.Lines, err)
			}
			stats.Skipped++
			continue
		}
		entries = append(entries, entry)
		stats.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", name, err)
	}
	return entries, stats, nil
}
