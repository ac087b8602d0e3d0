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

package game

import (
	"fmt"
	"strings"
)

// Color is one of the two sides of a game. White is the first player.
type Color uint8

const (
	White Color = iota
	Black
)

// ParseColor parses a side's name, like "white" or "b".
func ParseColor(name string) (Color, error) {
	switch strings.ToLower(name) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("parse color: unknown side %q", name)
	}
}

// Other returns the opposing side.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "White"
	}

	return "Black"
}

// Outcome classifies a game as still running or finished.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	DrawByRule
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case DrawByRule:
		return "draw-by-rule"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Over reports whether the outcome is terminal.
func (o Outcome) Over() bool {
	return o != Ongoing
}

// Result represents the score of a single game.
type Result int

const (
	WhiteWins  Result = +1
	Draw       Result = 0
	BlackWins  Result = -1
	Unfinished Result = 2
)

// GameLostBy maps the losing side to the game's Result.
var GameLostBy = [2]Result{
	White: BlackWins,
	Black: WhiteWins,
}

// ResultOf scores a game which ended with the given outcome and side to
// move in the final position.
func ResultOf(outcome Outcome, stm Color) Result {
	switch outcome {
	case Checkmate:
		return GameLostBy[stm]
	case Stalemate, DrawByRule:
		return Draw
	default:
		return Unfinished
	}
}

// String returns the PGN representation of the Result.
func (result Result) String() string {
	switch result {
	case WhiteWins:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case BlackWins:
		return "0-1"
	default:
		return "*"
	}
}
