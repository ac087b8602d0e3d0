// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oracle

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/replier/pkg/game"
)

// scripted returns the config of testdata/engine.sh answering with reply.
func scripted(t *testing.T, reply, log string) EngineConfig {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("scripted engine needs a POSIX shell")
	}

	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found")
	}

	script, err := filepath.Abs(filepath.Join("testdata", "engine.sh"))
	require.NoError(t, err)

	return EngineConfig{
		Name:      "scripted",
		Cmd:       sh,
		Arg:       strings.TrimSpace(strings.Join([]string{script, reply, log}, " ")),
		Margin:    200 * time.Millisecond,
		Handshake: 2 * time.Second,
	}
}

func after(t *testing.T, tokens ...string) *game.Position {
	t.Helper()

	pos := game.NewPosition()
	for _, token := range tokens {
		mov, err := game.ParseMove(token)
		require.NoError(t, err)

		pos, err = pos.Apply(mov)
		require.NoError(t, err)
	}

	return pos
}

func TestQueryReturnsBestMove(t *testing.T) {
	client := NewClient(scripted(t, "e7e5", ""))

	reply := client.Query(context.Background(), Request{
		Position: after(t, "e2e4"),
		Budget:   50 * time.Millisecond,
	})

	require.False(t, reply.Absent(), "unexpected error: %v", reply.Err)
	assert.Equal(t, "e7e5", reply.Move.String())
}

func TestQuerySendsPosition(t *testing.T) {
	log := filepath.Join(t.TempDir(), "commands.log")
	client := NewClient(scripted(t, "b8c6", log))

	reply := client.Query(context.Background(), Request{
		Position: after(t, "g1f3"),
		Budget:   50 * time.Millisecond,
	})
	require.False(t, reply.Absent(), "unexpected error: %v", reply.Err)

	data, err := os.ReadFile(log)
	require.NoError(t, err)

	commands := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.GreaterOrEqual(t, len(commands), 6)
	assert.Equal(t, []string{
		"uci",
		"isready",
		"ucinewgame",
		"isready",
		"position fen " + game.StartFEN + " moves g1f3",
		"go movetime 50",
	}, commands[:6])
}

func TestQuerySearchLimits(t *testing.T) {
	log := filepath.Join(t.TempDir(), "commands.log")
	config := scripted(t, "e7e5", log)
	config.Depth = 12
	config.Nodes = 5000

	reply := NewClient(config).Query(context.Background(), Request{
		Position: after(t, "e2e4"),
		Budget:   20 * time.Millisecond,
	})
	require.False(t, reply.Absent(), "unexpected error: %v", reply.Err)

	data, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Contains(t, string(data), "go movetime 20 depth 12 nodes 5000\n")
}

// lastCommand returns the last command the scripted engine logged.
func lastCommand(t *testing.T, log string) string {
	t.Helper()

	data, err := os.ReadFile(log)
	require.NoError(t, err)

	commands := strings.Split(strings.TrimSpace(string(data)), "\n")
	return commands[len(commands)-1]
}

func TestQueryAbsent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		cause error
		quit  bool
	}{
		{"silent engine", "silent", ErrReadTimeout, true},
		{"no legal move", "(none)", errNoMove, true},
		{"null move", "0000", errNoMove, true},
		{"crashed engine", "exit", ErrExited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := filepath.Join(t.TempDir(), "commands.log")
			client := NewClient(scripted(t, tt.reply, log))

			start := time.Now()
			reply := client.Query(context.Background(), Request{
				Position: after(t, "e2e4"),
				Budget:   20 * time.Millisecond,
			})

			assert.Less(t, time.Since(start), 5*time.Second)
			require.True(t, reply.Absent())
			assert.ErrorIs(t, reply.Err, ErrUnavailable)
			assert.ErrorIs(t, reply.Err, tt.cause)

			// The engine is released once the query has failed.
			if tt.quit {
				assert.Equal(t, "quit", lastCommand(t, log))
			} else {
				assert.Equal(t, "go movetime 20", lastCommand(t, log))
			}
		})
	}
}

func TestQueryMalformedReply(t *testing.T) {
	log := filepath.Join(t.TempDir(), "commands.log")
	client := NewClient(scripted(t, "z9z9", log))

	reply := client.Query(context.Background(), Request{
		Position: after(t, "e2e4"),
		Budget:   50 * time.Millisecond,
	})

	require.True(t, reply.Absent())
	assert.ErrorIs(t, reply.Err, ErrUnavailable)

	var malformed *game.MalformedMoveError
	assert.True(t, errors.As(reply.Err, &malformed))
	assert.Equal(t, "quit", lastCommand(t, log))
}

func TestQueryReleasesEngine(t *testing.T) {
	log := filepath.Join(t.TempDir(), "commands.log")
	client := NewClient(scripted(t, "e7e5", log))

	reply := client.Query(context.Background(), Request{
		Position: after(t, "e2e4"),
		Budget:   20 * time.Millisecond,
	})

	require.False(t, reply.Absent(), "unexpected error: %v", reply.Err)
	assert.Equal(t, "quit", lastCommand(t, log))
}

func TestEngineTrafficLoggedAtTrace(t *testing.T) {
	hook := test.NewGlobal()
	level := logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetLevel(level)
		hook.Reset()
	})

	traffic := func() int {
		count := 0
		for _, entry := range hook.AllEntries() {
			if strings.HasPrefix(entry.Message, "(scripted)") {
				count++
			}
		}

		return count
	}

	query := func() {
		reply := NewClient(scripted(t, "e7e5", "")).Query(context.Background(), Request{
			Position: after(t, "e2e4"),
			Budget:   20 * time.Millisecond,
		})
		require.False(t, reply.Absent(), "unexpected error: %v", reply.Err)
	}

	logrus.SetLevel(logrus.DebugLevel)
	query()
	assert.Zero(t, traffic())

	hook.Reset()
	logrus.SetLevel(logrus.TraceLevel)
	query()
	assert.Positive(t, traffic())
}

func TestQueryMissingEngine(t *testing.T) {
	client := NewClient(EngineConfig{Cmd: filepath.Join(t.TempDir(), "missing-engine")})

	reply := client.Query(context.Background(), Request{Position: game.NewPosition()})

	require.True(t, reply.Absent())
	assert.ErrorIs(t, reply.Err, ErrUnavailable)
}

func TestQueryCancelled(t *testing.T) {
	client := NewClient(scripted(t, "e7e5", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply := client.Query(ctx, Request{Position: after(t, "e2e4")})

	require.True(t, reply.Absent())
	assert.ErrorIs(t, reply.Err, ErrUnavailable)
}

func TestQueryWithoutPosition(t *testing.T) {
	reply := NewClient(EngineConfig{Cmd: "stockfish"}).Query(context.Background(), Request{})

	require.True(t, reply.Absent())
	assert.ErrorIs(t, reply.Err, ErrUnavailable)
}

func TestNewClientDefaults(t *testing.T) {
	config := NewClient(EngineConfig{Cmd: "/opt/engines/stockfish"}).Config()

	assert.Equal(t, "stockfish", config.Name)
	assert.Equal(t, DefaultMargin, config.Margin)
	assert.Equal(t, DefaultHandshake, config.Handshake)
}
