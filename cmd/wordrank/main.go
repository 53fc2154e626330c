// Copyright 2025 The WordRank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word completion server, CLI and dictionary tools.

wordrank provides prefix-based word completion over a frequency-ranked trie.
It can operate as a MessagePack IPC server for integration with text editors,
or as a CLI application for testing and debugging.

Dictionaries are plain text files with one `word frequency` pair per line, or
binary chunk files named dict_0001.bin, dict_0002.bin, etc. produced by the
build command. Words are ranked by frequency; ties are broken alphabetically.

# Usage

Start the server with default settings:

	wordrank

Use a custom dictionary and enable debug mode:

	wordrank serve --data /path/to/words.txt -d

Run in CLI mode for interactive testing:

	wordrank cli --limit 10 --prmin 2

One-shot query:

	wordrank query app

Convert a text dictionary into binary chunks:

	wordrank build words.txt -o data/ --chunk 10000

# Configuration

Runtime configuration is managed through a TOML file that supports server
parameters, dictionary settings, and CLI defaults:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	default_limit = 5

	[dict]
	paths = ["data/dictionary.txt"]
	backend = "trie"
	lowercase = true
	max_words = 0

	[cli]
	default_limit = 5
	min_prefix = 2
	max_prefix = 60
	no_filter = false

The config file is created with defaults if it doesn't exist. Server mode
watches the file and applies [server] changes without restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package server
for the message shapes.

	{"id": "req1", "p": "hello", "l": 20}
	{"id": "req1", "s": [{"w": "hello", "f": 4120, "r": 1}, {"w": "help", "f": 3900, "r": 2}], "c": 2, "t": 145}

# Metrics

Pass --metrics-addr to serve Prometheus metrics over HTTP while the IPC server runs:

	wordrank serve --metrics-addr 127.0.0.1:9464
*/
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

const (
	Version = "1.0.0"
	AppName = "wordrank"
	gh      = "https://github.com/bastiangx/wordrank"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
