package client

import (
	"errors"
	"io"
	"testing"

	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// connect runs a server on in-memory pipes and returns a client for it plus a
// function that closes the client and waits for the server to stop.
func connect(t *testing.T) (*Client, func()) {
	t.Helper()
	completer := suggest.NewCompleter()
	_, err := completer.Load([]suggest.Entry{
		{Word: "apple", Frequency: 30},
		{Word: "application", Frequency: 15},
		{Word: "apply", Frequency: 10},
		{Word: "appetite", Frequency: 5},
	})
	require.NoError(t, err)

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	srv := server.NewServer(completer, config.DefaultConfig().Server, nil, reqR, respW)

	done := make(chan error, 1)
	go func() {
		err := srv.Start()
		respW.Close()
		done <- err
	}()

	c, err := New(respR, reqW)
	require.NoError(t, err)
	return c, func() {
		require.NoError(t, c.Close())
		require.NoError(t, <-done)
	}
}

func TestClientRoundTrips(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, stop := connect(t)
	defer stop()

	require.NoError(t, c.Ping())

	resp, err := c.Complete("app", 2)
	require.NoError(t, err)
	assert.Equal(t, "c2", resp.ID)
	assert.Equal(t, []server.Suggestion{
		{Word: "apple", Frequency: 30, Rank: 1},
		{Word: "application", Frequency: 15, Rank: 2},
	}, resp.Suggestions)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalWords)
	assert.Equal(t, 30, stats.MaxFrequency)
}

func TestClientNoMatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, stop := connect(t)
	defer stop()

	resp, err := c.Complete("xyz", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Suggestions)
}

func TestClientServerError(t *testing.T) {
	defer goleak.VerifyNone(t)
	c, stop := connect(t)
	defer stop()

	_, err := c.Complete("app", 1000)
	var serverErr *Error
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, server.CodeInvalidInput, serverErr.Code)
	assert.Equal(t, "c1", serverErr.ID)

	// the connection stays usable after an error
	resp, err := c.Complete("appe", 1)
	require.NoError(t, err)
	assert.Equal(t, "appetite", resp.Suggestions[0].Word)
}

func TestNewRejectsClosedStream(t *testing.T) {
	r, w := io.Pipe()
	w.Close()
	_, err := New(r, io.Discard)
	require.Error(t, err)
}
