/*
Package server implements msgpack IPC for word completion services.

The server reads a stream of msgpack encoded requests from its input and writes one msgpack
encoded response per request to its output. Messages are processed synchronously, in order,
with timing info included in completion responses.

# IPC

Every request carries a client chosen ID that is echoed back, an optional action and the
fields the action needs. Completion is the default action:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions ranked by frequency:

	{"id": "req_001", "s": [{"w": "amenity", "f": 912, "r": 1}, {"w": "america", "f": 877, "r": 2}], "c": 2, "t": 145}

t is the time spent in the index in microseconds. A prefix that matches nothing is not an
error; the response simply has c = 0.

Other actions:

	{"id": "s1", "action": "stats"}  -> {"id": "s1", "status": "ok", "stats": {"total_words": 1000, ...}}
	{"id": "p1", "action": "ping"}   -> {"id": "p1", "status": "pong"}

Failures come back as

	{"id": "req_001", "e": "prefix must be at least 2 characters", "code": 400}

with code 400 for invalid input, 404 for an unknown action and 500 for anything else.

Before reading the first request the server writes {"status": "ready"}. It returns cleanly
when its input reaches EOF.
*/
package server

import "github.com/bastiangx/wordrank/pkg/suggest"

// Actions understood by the server. An empty action means ActionComplete.
const (
	ActionComplete = "complete"
	ActionStats    = "stats"
	ActionPing     = "ping"
)

// Response codes carried by ErrorResponse.
const (
	CodeInvalidInput  = 400
	CodeUnknownAction = 404
	CodeInternal      = 500
)

// Request is the single inbound message shape; fields unused by an action are ignored.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// Suggestion is one ranked completion.
type Suggestion struct {
	Word      string `msgpack:"w"`
	Frequency int    `msgpack:"f"`
	Rank      uint16 `msgpack:"r"`
}

// CompletionResponse answers a completion request.
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatsResponse answers a stats request.
type StatsResponse struct {
	ID     string        `msgpack:"id"`
	Status string        `msgpack:"status"`
	Stats  suggest.Stats `msgpack:"stats"`
}

// StatusResponse carries the ready signal and ping replies.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for any failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"code"`
}
