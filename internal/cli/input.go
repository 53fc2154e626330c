// Package cli handles cmd line input and suggestions for debugging and quick lookups
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads prefixes line by line and prints ranked suggestions.
// It accepts flags to control minimum and maximum prefix length, the suggestion
// limit and whether junk input is filtered before it reaches the completer.
type InputHandler struct {
	completer       suggest.ICompleter
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool
	lowercase       bool

	in  io.Reader
	out *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters.
// lowercase folds input the way the vocabulary was folded when it was loaded.
// It reads stdin and prints to stdout until SetIO says otherwise.
func NewInputHandler(completer suggest.ICompleter, minLength, maxLength, limit int, noFilter, lowercase bool) *InputHandler {
	if limit < 1 {
		limit = suggest.DefaultLimit
	}
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
		lowercase:       lowercase,
		in:              os.Stdin,
		out:             logger.Printer(os.Stdout, ""),
	}
}

// SetIO redirects input and output.
func (h *InputHandler) SetIO(in io.Reader, out io.Writer) {
	h.in = in
	h.out = logger.Printer(out, "")
}

// Start begins the interface loop. It prompts, reads a line and hands it to
// HandleInput until the input ends, which is not an error.
func (h *InputHandler) Start() error {
	h.out.Print("wordrank CLI")
	h.out.Print("type a prefix and press Enter to see suggestions (Ctrl+D to exit):")

	reader := bufio.NewReader(h.in)
	for {
		h.out.Print("> ")
		line, err := reader.ReadString('\n')
		if line != "" {
			h.HandleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// HandleInput runs one query. The line is trimmed, lowercased if the handler folds case, checked against the
// length bounds and, unless filtering is off, against utils.IsValidInput.
func (h *InputHandler) HandleInput(line string) {
	prefix := utils.NormalizePrefix(line, h.lowercase)
	if prefix == "" {
		h.out.Print("Please enter a prefix to search.")
		return
	}

	n := utf8.RuneCountInString(prefix)
	if n < h.minPrefixLength {
		h.out.Printf("Please enter at least %d characters", h.minPrefixLength)
		return
	}
	if n > h.maxPrefixLength {
		h.out.Printf("Prefix exceeds maximum length of %d characters", h.maxPrefixLength)
		return
	}

	if !h.noFilter && !utils.IsValidInput(prefix) {
		log.Debugf("Filtered out prefix %q", prefix)
		h.out.Print("no suggestions found")
		return
	}

	start := time.Now()
	suggestions, err := h.completer.Complete(prefix, h.suggestLimit)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)
	if err != nil {
		h.out.Errorf("Query failed: %v", err)
		return
	}

	if len(suggestions) == 0 {
		h.out.Print("no suggestions found")
		return
	}

	h.out.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for i, s := range suggestions {
		h.out.Printf("%2d. %s (%s)", i+1, wordStyle.Render(s.Word), utils.FormatWithCommas(s.Frequency))
	}
}
