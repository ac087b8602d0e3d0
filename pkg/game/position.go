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
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/piece"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

// Position is a snapshot of a game: a base position in FEN and the moves
// played on it since. The rules are evaluated by a mess board which is
// rebuilt from that line, so a Position is never changed once created:
// Apply returns a new one instead.
type Position struct {
	base string // six field FEN of the base position
	line []Move // moves played since base

	history []Move // every move played in the session

	board *board.Board
	legal []Move
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic("game: bad start position: " + err.Error())
	}

	return pos
}

// ParseFEN parses the given FEN string into a Position. Strings which do
// not describe a valid position are reported as an *InvalidPositionError.
func ParseFEN(fenstr string) (*Position, error) {
	fields, err := normalizeFEN(fenstr)
	if err != nil {
		return nil, &InvalidPositionError{FEN: fenstr, Reason: err.Error()}
	}

	pos := newPosition(strings.Join(fields[:], " "), nil, nil)

	// The side which just moved can't have left its king en prise.
	stm := pos.board.SideToMove
	xtm := piece.White
	if stm == piece.White {
		xtm = piece.Black
	}

	if pos.board.IsInCheck(xtm) {
		return nil, &InvalidPositionError{FEN: fenstr, Reason: "side not to move is in check"}
	}

	return pos, nil
}

func newPosition(base string, line, history []Move) *Position {
	chessboard := board.New(board.FEN(fen.FromString(base)))
	for _, mov := range line {
		chessboard.MakeMove(chessboard.NewMoveFromString(mov.String()))
	}

	pos := &Position{
		base:    base,
		line:    line,
		history: history,
		board:   chessboard,
	}

	for _, mov := range chessboard.GenerateMoves(false) {
		if parsed, err := ParseMove(mov.String()); err == nil {
			pos.legal = append(pos.legal, parsed)
		}
	}

	return pos
}

// IsLegal reports whether the given move can be played in the position.
func (pos *Position) IsLegal(m Move) bool {
	for _, legal := range pos.legal {
		if legal == m {
			return true
		}
	}

	return false
}

// Apply returns the position reached after playing the given move. The
// receiver is left untouched. Moves which can't be played are reported
// as an *IllegalMoveError.
func (pos *Position) Apply(m Move) (*Position, error) {
	if !pos.IsLegal(m) {
		return nil, &IllegalMoveError{Move: m, FEN: pos.FEN()}
	}

	history := append(pos.Moves(), m)

	line := make([]Move, len(pos.line), len(pos.line)+1)
	copy(line, pos.line)
	next := newPosition(pos.base, append(line, m), history)

	// Positions before an irreversible move can't repeat, so the line can
	// be rebased once the draw clock is reset.
	if next.board.DrawClock == 0 {
		next = newPosition(next.FEN(), nil, history)
	}

	return next, nil
}

// Outcome evaluates the position's game state. For draws a short reason
// is returned as well.
func (pos *Position) Outcome() (Outcome, string) {
	switch {
	case len(pos.legal) == 0:
		if pos.board.IsInCheck(pos.board.SideToMove) {
			return Checkmate, "Checkmate"
		}

		return Stalemate, "Stalemate"

	// Fifty moves and threefold repetition can only be claimed.
	case pos.board.DrawClock >= 150:
		return DrawByRule, "75-move Rule"
	case pos.repetitions() >= 5:
		return DrawByRule, "Fivefold Repetition"
	case pos.board.IsInsufficientMaterial():
		return DrawByRule, "Insufficient Material"
	}

	return Ongoing, ""
}

// repetitions counts how often the current position has occurred. Only the
// line needs to be replayed: nothing before an irreversible move repeats.
func (pos *Position) repetitions() int {
	current := repetitionKey(pos.board)

	chessboard := board.New(board.FEN(fen.FromString(pos.base)))
	count := 0
	if repetitionKey(chessboard) == current {
		count++
	}

	for _, mov := range pos.line {
		chessboard.MakeMove(chessboard.NewMoveFromString(mov.String()))
		if repetitionKey(chessboard) == current {
			count++
		}
	}

	return count
}

// repetitionKey identifies a position by placement, side to move, castling
// rights and en passant target, ignoring the move counters.
func repetitionKey(chessboard *board.Board) string {
	fields := [6]string(chessboard.FEN())
	return strings.Join(fields[:4], " ")
}

// SideToMove returns the side whose turn it is.
func (pos *Position) SideToMove() Color {
	if pos.board.SideToMove == piece.White {
		return White
	}

	return Black
}

// LegalMoves returns the moves which can be played in the position.
func (pos *Position) LegalMoves() []Move {
	return append([]Move(nil), pos.legal...)
}

// Moves returns every move played to reach the position.
func (pos *Position) Moves() []Move {
	return append([]Move(nil), pos.history...)
}

// Base returns the FEN of the position the current line starts from.
// Together with Line it is what a UCI engine is sent.
func (pos *Position) Base() string {
	return pos.base
}

// Line returns the moves played since Base.
func (pos *Position) Line() []Move {
	return append([]Move(nil), pos.line...)
}

// FEN returns the position's FEN string.
func (pos *Position) FEN() string {
	fen := [6]string(pos.board.FEN())
	return strings.Join(fen[:], " ")
}

// String renders the board, eighth rank first.
func (pos *Position) String() string {
	fen := [6]string(pos.board.FEN())
	return render(fen[0])
}
