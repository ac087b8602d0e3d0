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

// Package match implements the turn cycle of a game between a human and
// an engine. A Match owns the current position and only ever advances it
// by moves the rules accept.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laptudirm.com/x/replier/pkg/game"
	"laptudirm.com/x/replier/pkg/oracle"
)

// Oracle is anything which can answer move requests, usually an
// *oracle.Client.
type Oracle interface {
	Query(ctx context.Context, req oracle.Request) oracle.Reply
}

// State is the state of a Match's turn cycle.
type State uint8

const (
	AwaitingHumanMove State = iota
	AwaitingOracleMove
	GameOver
)

func (state State) String() string {
	switch state {
	case AwaitingHumanMove:
		return "awaiting human move"
	case AwaitingOracleMove:
		return "awaiting oracle move"
	case GameOver:
		return "game over"
	default:
		return "unknown"
	}
}

var (
	ErrGameOver     = errors.New("match: game is over")
	ErrHumanToMove  = errors.New("match: waiting for the human's move")
	ErrOracleToMove = errors.New("match: waiting for the engine's move")
	ErrIllegalReply = errors.New("match: engine replied with an illegal move")
	ErrNoPosition   = errors.New("match: no starting position")
	ErrNoOracle     = errors.New("match: no oracle")
)

type Config struct {
	// Position the game starts from.
	Position *game.Position

	// Human is the side played by the human.
	Human game.Color

	// Oracle answers for the other side.
	Oracle Oracle

	// Budget is the engine's thinking time per move.
	Budget time.Duration
}

type Match struct {
	position *game.Position
	human    game.Color

	engine  Oracle
	request oracle.Request

	state   State
	outcome game.Outcome
	reason  string
}

// New starts a match from the configured position. The match begins in
// GameOver straight away if that position is already decided.
func New(config Config) (*Match, error) {
	if config.Position == nil {
		return nil, ErrNoPosition
	}

	if config.Oracle == nil {
		return nil, ErrNoOracle
	}

	match := &Match{
		human:   config.Human,
		engine:  config.Oracle,
		request: oracle.Request{Budget: config.Budget},
	}

	match.advance(config.Position)
	return match, nil
}

// Play makes the human's move given as a coordinate token. Malformed
// tokens and illegal moves are rejected with a *game.MalformedMoveError
// and a *game.IllegalMoveError respectively, and leave the match as is.
func (match *Match) Play(token string) (game.Move, error) {
	switch match.state {
	case GameOver:
		return game.Move{}, ErrGameOver
	case AwaitingOracleMove:
		return game.Move{}, ErrOracleToMove
	}

	mov, err := game.ParseMove(token)
	if err != nil {
		return game.Move{}, err
	}

	next, err := match.position.Apply(mov)
	if err != nil {
		return game.Move{}, err
	}

	match.advance(next)
	return mov, nil
}

// Reply asks the oracle for its move and plays it. An absent reply, or a
// reply the rules reject, aborts the game: there is no retrying.
func (match *Match) Reply(ctx context.Context) (game.Move, error) {
	switch match.state {
	case GameOver:
		return game.Move{}, ErrGameOver
	case AwaitingHumanMove:
		return game.Move{}, ErrHumanToMove
	}

	req := match.request
	req.Position = match.position

	reply := match.engine.Query(ctx, req)
	if reply.Absent() {
		match.abort(reply.Err)
		return game.Move{}, reply.Err
	}

	next, err := match.position.Apply(reply.Move)
	if err != nil {
		err = fmt.Errorf("%w %s: %w", ErrIllegalReply, reply.Move, oracle.ErrUnavailable)
		match.abort(err)
		return game.Move{}, err
	}

	match.advance(next)
	return reply.Move, nil
}

// advance makes the given position current and works out whose turn it
// is, or whether the game has ended.
func (match *Match) advance(position *game.Position) {
	match.position = position
	match.outcome, match.reason = position.Outcome()

	switch {
	case match.outcome.Over():
		match.state = GameOver
	case position.SideToMove() == match.human:
		match.state = AwaitingHumanMove
	default:
		match.state = AwaitingOracleMove
	}
}

func (match *Match) abort(err error) {
	match.state = GameOver
	match.outcome = game.Aborted
	match.reason = err.Error()
}

func (match *Match) State() State { return match.state }
func (match *Match) Human() game.Color { return match.human }
func (match *Match) Budget() time.Duration { return match.request.Budget }

// Position returns the current position.
func (match *Match) Position() *game.Position {
	return match.position
}

// Outcome returns the game's outcome, Ongoing until it is over.
func (match *Match) Outcome() game.Outcome {
	return match.outcome
}

// Result scores the game. Unfinished and aborted games score as "*".
func (match *Match) Result() game.Result {
	return game.ResultOf(match.outcome, match.position.SideToMove())
}

// Reason describes why the game ended, like "Checkmate" or the error
// which aborted it.
func (match *Match) Reason() string {
	return match.reason
}
