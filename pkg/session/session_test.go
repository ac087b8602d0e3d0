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

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/replier/pkg/game"
	"laptudirm.com/x/replier/pkg/oracle"
)

// stubOracle replies with the given moves in order, and is unavailable
// once they run out.
type stubOracle struct {
	replies []string
	calls   int
}

func (o *stubOracle) Query(ctx context.Context, req oracle.Request) oracle.Reply {
	o.calls++
	if o.calls > len(o.replies) {
		return oracle.Reply{Err: fmt.Errorf("%w: engine crashed", oracle.ErrUnavailable)}
	}

	mov, err := game.ParseMove(o.replies[o.calls-1])
	if err != nil {
		return oracle.Reply{Err: fmt.Errorf("%w: %w", oracle.ErrUnavailable, err)}
	}

	return oracle.Reply{Move: mov}
}

func run(t *testing.T, config Config, input string, replies ...string) (Report, string, *stubOracle) {
	t.Helper()

	var out bytes.Buffer
	stub := &stubOracle{replies: replies}

	config.Oracle = stub
	config.Budget = 10 * time.Millisecond
	config.Input = strings.NewReader(input)
	config.Output = &out

	report, err := Run(context.Background(), config)
	require.NoError(t, err)

	return report, out.String(), stub
}

func moves(t *testing.T, tokens ...string) []game.Move {
	t.Helper()

	var list []game.Move
	for _, token := range tokens {
		mov, err := game.ParseMove(token)
		require.NoError(t, err)
		list = append(list, mov)
	}

	return list
}

// appearInOrder checks that the given lines appear in the transcript one
// after another, with anything in between.
func appearInOrder(t *testing.T, transcript string, lines ...string) {
	t.Helper()

	rest := transcript
	for _, line := range lines {
		i := strings.Index(rest, line)
		if !assert.GreaterOrEqual(t, i, 0, "%q missing or out of order in transcript:\n%s", line, transcript) {
			return
		}

		rest = rest[i+len(line):]
	}
}

func TestFoolsMate(t *testing.T) {
	report, transcript, stub := run(t, Config{}, "f2f3\ng2g4\n", "e7e5", "d8h4")

	assert.Equal(t, game.Checkmate, report.Outcome)
	assert.Equal(t, game.BlackWins, report.Result)
	assert.Equal(t, "Checkmate", report.Reason)
	assert.False(t, report.Quit)
	assert.Equal(t, 2, stub.calls)

	if diff := cmp.Diff(moves(t, "f2f3", "e7e5", "g2g4", "d8h4"), report.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}

	appearInOrder(t, transcript,
		"Current Board State:\nr n b q k b n r\n",
		"It's White's turn.",
		"It's Black's turn.",
		"Engine's reply move (UCI): e7e5",
		"Engine's reply move (UCI): d8h4",
		"Game over: checkmate (0-1)",
		"Reason: Checkmate",
	)
}

func TestRejectedMovesReprompt(t *testing.T) {
	report, transcript, stub := run(t, Config{}, "e2e9\nf1c4\nE2E4\nquit\n", "e7e5")

	appearInOrder(t, transcript,
		"Invalid UCI format (bad destination square).",
		"f1c4 is not a legal move. Please try again.",
		"Engine's reply move (UCI): e7e5",
		"Exiting game.",
	)

	assert.True(t, report.Quit)
	assert.Equal(t, game.Ongoing, report.Outcome)
	assert.Equal(t, game.Unfinished, report.Result)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, moves(t, "e2e4", "e7e5"), report.Moves)

	// One board per position, rejections don't redraw it.
	assert.Equal(t, 3, strings.Count(transcript, "Current Board State:"))
}

func TestQuitTokens(t *testing.T) {
	for _, token := range []string{"quit", "exit", "QUIT", "Exit"} {
		t.Run(token, func(t *testing.T) {
			report, _, stub := run(t, Config{}, token+"\ne2e4\n")

			assert.True(t, report.Quit)
			assert.Empty(t, report.Moves)
			assert.Zero(t, stub.calls)
		})
	}
}

func TestEndOfInputEndsSession(t *testing.T) {
	report, transcript, _ := run(t, Config{}, "d2d4\n", "d7d5")

	assert.True(t, report.Quit)
	assert.Len(t, report.Moves, 2)
	assert.Contains(t, transcript, "Exiting game.")
}

func TestEngineFailureAborts(t *testing.T) {
	report, transcript, stub := run(t, Config{}, "e2e4\nd2d4\n")

	assert.Equal(t, game.Aborted, report.Outcome)
	assert.Equal(t, game.Unfinished, report.Result)
	assert.False(t, report.Quit)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, moves(t, "e2e4"), report.Moves)

	appearInOrder(t, transcript,
		"The engine could not reply:",
		"Game over: aborted (*)",
	)
}

func TestEngineMovesFirst(t *testing.T) {
	report, transcript, stub := run(t, Config{Human: "black"}, "e7e5\nquit\n", "e2e4", "g1f3")

	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, moves(t, "e2e4", "e7e5", "g1f3"), report.Moves)
	appearInOrder(t, transcript,
		"Engine's reply move (UCI): e2e4",
		"It's Black's turn.",
		"Engine's reply move (UCI): g1f3",
	)
}

func TestPromptedFEN(t *testing.T) {
	// Black to move can mate with d8h4.
	fools := "rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq g3 0 2"

	report, transcript, stub := run(t, Config{AskFEN: true}, fools+"\nd8h4\n")

	assert.Contains(t, transcript, "Enter FEN: ")
	assert.Equal(t, game.Checkmate, report.Outcome)
	assert.Equal(t, game.BlackWins, report.Result)
	assert.Zero(t, stub.calls)
}

func TestPromptedBlankFEN(t *testing.T) {
	report, _, _ := run(t, Config{AskFEN: true}, "\ne2e4\nquit\n", "c7c5")

	assert.Equal(t, moves(t, "e2e4", "c7c5"), report.Moves)
}

func TestFlagFENSkipsPrompt(t *testing.T) {
	_, transcript, _ := run(t, Config{AskFEN: true, FEN: game.StartFEN}, "quit\n")

	assert.NotContains(t, transcript, "Enter FEN")
}

func TestDecidedStartPosition(t *testing.T) {
	report, transcript, stub := run(t, Config{FEN: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"}, "")

	assert.Equal(t, game.Stalemate, report.Outcome)
	assert.Equal(t, game.Draw, report.Result)
	assert.False(t, report.Quit)
	assert.Zero(t, stub.calls)
	assert.Contains(t, transcript, "Game over: stalemate (1/2-1/2)")
}

func TestInvalidStart(t *testing.T) {
	_, err := Run(context.Background(), Config{
		FEN:    "8/8/8/8/8/8/8/8 w - - 0 1",
		Oracle: &stubOracle{},
		Input:  strings.NewReader(""),
		Output: io.Discard,
	})

	var invalid *game.InvalidPositionError
	assert.True(t, errors.As(err, &invalid), "want *game.InvalidPositionError, got %v", err)

	_, err = Run(context.Background(), Config{
		Human:  "green",
		Oracle: &stubOracle{},
		Input:  strings.NewReader(""),
	})
	assert.Error(t, err)
}

func TestCancelledWhileWaiting(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Report)
	go func() {
		report, err := Run(ctx, Config{
			Oracle: &stubOracle{},
			Input:  reader,
			Output: io.Discard,
		})
		assert.NoError(t, err)
		done <- report
	}()

	cancel()

	select {
	case report := <-done:
		assert.True(t, report.Quit)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
}
