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

import "fmt"

// Square is one of the 64 squares of the board, a1 = 0 through h8 = 63.
type Square int8

// NoSquare is returned alongside an error by ParseSquare.
const NoSquare Square = -1

// ParseSquare parses a square in its coordinate form, like "e4". The file
// letter may be in either case.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("square %q: want two characters", s)
	}

	file := lower(s[0]) - 'a'
	rank := s[1] - '1'
	if file > 7 || rank > 7 {
		return NoSquare, fmt.Errorf("square %q: out of bounds", s)
	}

	return Square(rank*8 + file), nil
}

func (sq Square) File() int { return int(sq) % 8 }
func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}

	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// Piece is the piece a pawn is promoted to. NoPiece marks a move that
// is not a promotion.
type Piece uint8

const (
	NoPiece Piece = iota
	Knight
	Bishop
	Rook
	Queen
)

var promotionLetters = [...]string{
	NoPiece: "",
	Knight:  "n",
	Bishop:  "b",
	Rook:    "r",
	Queen:   "q",
}

func (p Piece) String() string {
	if int(p) >= len(promotionLetters) {
		return "?"
	}

	return promotionLetters[p]
}

// Move is a transition between two positions in coordinate form. A Move
// is only meaningful relative to the Position it was made in.
type Move struct {
	From, To  Square
	Promotion Piece
}

// ParseMove parses a move token of the form <from><to>[promotion], like
// "e2e4" or "e7e8q". Parsing is purely syntactic: whether the move can
// be played is decided by Position.IsLegal.
func ParseMove(token string) (Move, error) {
	if len(token) != 4 && len(token) != 5 {
		return Move{}, &MalformedMoveError{Token: token, Reason: "want 4 or 5 characters"}
	}

	from, err := ParseSquare(token[0:2])
	if err != nil {
		return Move{}, &MalformedMoveError{Token: token, Reason: "bad origin square"}
	}

	to, err := ParseSquare(token[2:4])
	if err != nil {
		return Move{}, &MalformedMoveError{Token: token, Reason: "bad destination square"}
	}

	mov := Move{From: from, To: to}
	if len(token) == 5 {
		switch lower(token[4]) {
		case 'n':
			mov.Promotion = Knight
		case 'b':
			mov.Promotion = Bishop
		case 'r':
			mov.Promotion = Rook
		case 'q':
			mov.Promotion = Queen
		default:
			return Move{}, &MalformedMoveError{Token: token, Reason: "bad promotion piece"}
		}
	}

	return mov, nil
}

// String returns the move's token, always in lower case.
func (m Move) String() string {
	return m.From.String() + m.To.String() + m.Promotion.String()
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}

	return c
}
