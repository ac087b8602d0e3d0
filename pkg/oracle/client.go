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
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/replier/pkg/game"
)

// DefaultBudget is the move time used for requests without a budget.
const DefaultBudget = 100 * time.Millisecond

// ErrUnavailable is wrapped by the error of every absent Reply.
var ErrUnavailable = errors.New("oracle: engine unavailable")

var errNoMove = errors.New("engine returned no move")

// Request asks for a move in the given position within a time budget.
type Request struct {
	Position *game.Position
	Budget   time.Duration
}

// Reply is the answer to a Request. A Reply with a non-nil Err carries no
// move; its Err wraps ErrUnavailable.
type Reply struct {
	Move game.Move
	Err  error
}

// Absent reports whether the reply carries no move.
func (reply Reply) Absent() bool {
	return reply.Err != nil
}

// Client queries a UCI engine for moves. Every query starts a fresh
// engine process which is killed before the query returns, so a Client
// holds no state between queries apart from its configuration.
type Client struct {
	config EngineConfig
}

// NewClient returns a Client which drives the engine described by the
// given config.
func NewClient(config EngineConfig) *Client {
	return &Client{config: config.withDefaults()}
}

// Config returns the client's engine configuration with defaults filled.
func (client *Client) Config() EngineConfig {
	return client.config
}

// Query asks the engine for its best move in the requested position. It
// never fails loudly: an engine which can't be started, doesn't answer
// within the budget, or answers with garbage results in an absent Reply.
func (client *Client) Query(ctx context.Context, req Request) Reply {
	start := time.Now()

	mov, err := client.query(ctx, req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"engine": client.config.Name,
			"error":  err,
		}).Warn("engine query failed")

		return Reply{Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	logrus.WithFields(logrus.Fields{
		"engine": client.config.Name,
		"move":   mov,
		"took":   time.Since(start).Round(time.Millisecond),
	}).Debug("engine replied")

	return Reply{Move: mov}
}

func (client *Client) query(ctx context.Context, req Request) (game.Move, error) {
	if req.Position == nil {
		return game.Move{}, errors.New("no position to search")
	}

	budget := req.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	engine, err := StartEngine(ctx, client.config)
	if err != nil {
		return game.Move{}, fmt.Errorf("start %s: %w", client.config.Cmd, err)
	}

	// Release the process on every path out of the query, panics included.
	defer engine.Kill()

	if err := engine.NewGame(); err != nil {
		return game.Move{}, err
	}

	if err := engine.Write("position fen %s%s", req.Position.Base(), movesSuffix(req.Position.Line())); err != nil {
		return game.Move{}, err
	}

	if err := engine.Write("go%s", client.limits(budget)); err != nil {
		return game.Move{}, err
	}

	line, err := engine.Await("^bestmove", budget+client.config.Margin)
	if err != nil {
		return game.Move{}, err
	}

	words := strings.Fields(line)
	if len(words) < 2 {
		return game.Move{}, errNoMove
	}

	switch words[1] {
	case "(none)", "0000":
		return game.Move{}, errNoMove
	}

	return game.ParseMove(words[1])
}

// limits formats the search limits of a go command.
func (client *Client) limits(budget time.Duration) string {
	limits := fmt.Sprintf(" movetime %d", budget.Milliseconds())

	if client.config.Depth > 0 {
		limits += fmt.Sprintf(" depth %d", client.config.Depth)
	}

	if client.config.Nodes > 0 {
		limits += fmt.Sprintf(" nodes %d", client.config.Nodes)
	}

	return limits
}

func movesSuffix(moves []game.Move) string {
	if len(moves) == 0 {
		return ""
	}

	tokens := make([]string, len(moves))
	for i, mov := range moves {
		tokens[i] = mov.String()
	}

	return " moves " + strings.Join(tokens, " ")
}
