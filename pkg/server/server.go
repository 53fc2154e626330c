package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word completions
type Server struct {
	completer suggest.ICompleter
	metrics   *metrics.Metrics

	mu     sync.RWMutex
	config config.ServerConfig

	decoder *msgpack.Decoder
	writer  *bufio.Writer
	encoder *msgpack.Encoder
}

// NewServer creates a completion server reading requests from r and writing responses to w.
// The CLI passes os.Stdin and os.Stdout.
func NewServer(completer suggest.ICompleter, cfg config.ServerConfig, m *metrics.Metrics, r io.Reader, w io.Writer) *Server {
	bw := bufio.NewWriter(w)
	return &Server{
		completer: completer,
		metrics:   m,
		config:    cfg,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    bw,
		encoder:   msgpack.NewEncoder(bw),
	}
}

// UpdateConfig swaps the server limits. Requests already being handled keep the old values.
func (s *Server) UpdateConfig(cfg config.ServerConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	log.Debugf("Server config updated: %+v", cfg)
}

func (s *Server) currentConfig() config.ServerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Start signals readiness and then serves requests until the input is exhausted.
// EOF between messages ends the loop with a nil error.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server.")
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}

		if err := s.handleMessage(raw); err != nil {
			return err
		}
	}
}

// handleMessage decodes one framed message and dispatches it. Only write failures are returned.
func (s *Server) handleMessage(raw msgpack.RawMessage) error {
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		log.Debugf("Malformed request: %v", err)
		s.metrics.ObserveRequest("malformed", CodeInvalidInput)
		return s.sendError("", "malformed request", CodeInvalidInput)
	}

	switch req.Action {
	case "", ActionComplete:
		return s.handleComplete(req)
	case ActionStats:
		s.metrics.ObserveRequest(ActionStats, 200)
		return s.send(StatsResponse{ID: req.ID, Status: "ok", Stats: s.completer.Stats()})
	case ActionPing:
		s.metrics.ObserveRequest(ActionPing, 200)
		return s.send(StatusResponse{ID: req.ID, Status: "pong"})
	default:
		s.metrics.ObserveRequest("unknown", CodeUnknownAction)
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), CodeUnknownAction)
	}
}

// handleComplete validates a completion request against the current limits, queries the
// completer and sends the ranked suggestions.
func (s *Server) handleComplete(req Request) error {
	cfg := s.currentConfig()

	if msg := validateRequest(req, cfg); msg != "" {
		log.Debugf("Rejected request %s: %s", req.ID, msg)
		s.metrics.ObserveRequest(ActionComplete, CodeInvalidInput)
		return s.sendError(req.ID, msg, CodeInvalidInput)
	}

	limit := req.Limit
	if limit == 0 {
		limit = cfg.DefaultLimit
	}

	start := time.Now()
	entries, err := s.completer.Complete(req.Prefix, limit)
	elapsed := time.Since(start)
	if err != nil {
		code := CodeInternal
		if errors.Is(err, suggest.ErrInvalidInput) {
			code = CodeInvalidInput
		}
		s.metrics.ObserveRequest(ActionComplete, code)
		return s.sendError(req.ID, err.Error(), code)
	}

	ranks := utils.CreateRankList(len(entries))
	suggestions := make([]Suggestion, len(entries))
	for i, e := range entries {
		suggestions[i] = Suggestion{Word: e.Word, Frequency: e.Frequency, Rank: ranks[i]}
	}

	s.metrics.ObserveRequest(ActionComplete, 200)
	return s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// validateRequest returns a client facing message for a request the limits reject, or "".
func validateRequest(req Request, cfg config.ServerConfig) string {
	n := utf8.RuneCountInString(req.Prefix)
	switch {
	case n < cfg.MinPrefix:
		return fmt.Sprintf("prefix must be at least %d characters", cfg.MinPrefix)
	case n > cfg.MaxPrefix:
		return fmt.Sprintf("prefix exceeds maximum length of %d characters", cfg.MaxPrefix)
	case req.Limit < 0:
		return fmt.Sprintf("limit must not be negative, got %d", req.Limit)
	case req.Limit > cfg.MaxLimit:
		return fmt.Sprintf("limit %d exceeds maximum of %d", req.Limit, cfg.MaxLimit)
	}
	return ""
}

// send encodes one response and flushes it so the client sees it immediately.
func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return err
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
