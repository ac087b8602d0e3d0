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
	"errors"
	"strconv"
	"strings"
)

// StartFEN is the FEN string of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// normalizeFEN checks that the given FEN string is structurally sound and
// returns it in its six field form. The move counters may be left out, in
// which case they default to "0 1". Castling rights and en passant targets
// which the piece placement can't back up are dropped.
func normalizeFEN(fenstr string) ([6]string, error) {
	var fields [6]string

	parts := strings.Fields(fenstr)
	switch len(parts) {
	case 4, 5, 6:
	default:
		return fields, errors.New("want 4 to 6 fields")
	}

	fields[4], fields[5] = "0", "1"
	copy(fields[:], parts)

	if err := checkPlacement(fields[0]); err != nil {
		return fields, err
	}

	switch fields[1] {
	case "w", "b":
	default:
		return fields, errors.New("side to move must be w or b")
	}

	if fields[2] != "-" {
		for i, c := range fields[2] {
			if !strings.ContainsRune("KQkq", c) || strings.ContainsRune(fields[2][:i], c) {
				return fields, errors.New("bad castling rights")
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return fields, errors.New("bad en passant square")
		}

		// The target is behind a pawn which has just made a double push.
		want := 5
		if fields[1] == "b" {
			want = 2
		}

		if sq.Rank() != want {
			return fields, errors.New("en passant square on the wrong rank")
		}
	}

	squares := expand(fields[0])
	fields[2] = cleanCastling(squares, fields[2])
	fields[3] = cleanEnPassant(squares, fields[1], fields[3])

	if n, err := strconv.Atoi(fields[4]); err != nil || n < 0 {
		return fields, errors.New("bad halfmove clock")
	}

	if n, err := strconv.Atoi(fields[5]); err != nil || n < 1 {
		return fields, errors.New("bad fullmove number")
	}

	return fields, nil
}

func checkPlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return errors.New("want 8 ranks")
	}

	kings := map[rune]int{}
	for i, rank := range ranks {
		squares := 0
		for _, c := range rank {
			switch {
			case '1' <= c && c <= '8':
				squares += int(c - '0')

			case strings.ContainsRune("pnbrqkPNBRQK", c):
				// ranks[0] is the eighth rank and ranks[7] the first.
				if (c == 'p' || c == 'P') && (i == 0 || i == 7) {
					return errors.New("pawn on a back rank")
				}

				if c == 'k' || c == 'K' {
					kings[c]++
				}

				squares++

			default:
				return errors.New("bad piece " + strconv.QuoteRune(c))
			}
		}

		if squares != 8 {
			return errors.New("rank " + strconv.Itoa(8-i) + " does not have 8 squares")
		}
	}

	if kings['K'] != 1 || kings['k'] != 1 {
		return errors.New("want exactly one king per side")
	}

	return nil
}

// expand maps a valid placement field to its squares, indexed like
// Square, with 0 for empty squares.
func expand(placement string) [64]byte {
	var squares [64]byte
	for i, rank := range strings.Split(placement, "/") {
		sq := (7 - i) * 8
		for _, c := range rank {
			if '1' <= c && c <= '8' {
				sq += int(c - '0')
				continue
			}

			squares[sq] = byte(c)
			sq++
		}
	}

	return squares
}

// castlingPieces lists the king and rook a castling right depends on.
var castlingPieces = map[rune][2]struct {
	piece byte
	sq    Square
}{
	'K': {{'K', 4}, {'R', 7}},
	'Q': {{'K', 4}, {'R', 0}},
	'k': {{'k', 60}, {'r', 63}},
	'q': {{'k', 60}, {'r', 56}},
}

// cleanCastling keeps the castling rights whose king and rook are still
// on their starting squares.
func cleanCastling(squares [64]byte, rights string) string {
	var kept strings.Builder
	for _, right := range rights {
		pieces, ok := castlingPieces[right]
		if ok && squares[pieces[0].sq] == pieces[0].piece && squares[pieces[1].sq] == pieces[1].piece {
			kept.WriteRune(right)
		}
	}

	if kept.Len() == 0 {
		return "-"
	}

	return kept.String()
}

// cleanEnPassant keeps an en passant target only if a pawn of the side
// not to move can just have double pushed past it: the target and the
// pawn's starting square are empty and the pawn stands in front of it.
func cleanEnPassant(squares [64]byte, stm, target string) string {
	if target == "-" {
		return target
	}

	sq, _ := ParseSquare(target)

	pawn, ahead, behind := byte('p'), sq-8, sq+8
	if stm == "b" {
		pawn, ahead, behind = 'P', sq+8, sq-8
	}

	if squares[sq] != 0 || squares[behind] != 0 || squares[ahead] != pawn {
		return "-"
	}

	return target
}

// render draws the piece placement field as an 8x8 grid, eighth rank
// first, with dots for empty squares.
func render(placement string) string {
	var sb strings.Builder
	for i, rank := range strings.Split(placement, "/") {
		if i > 0 {
			sb.WriteByte('\n')
		}

		var squares []string
		for _, c := range rank {
			if '1' <= c && c <= '8' {
				for n := 0; n < int(c-'0'); n++ {
					squares = append(squares, ".")
				}

				continue
			}

			squares = append(squares, string(c))
		}

		sb.WriteString(strings.Join(squares, " "))
	}

	return sb.String()
}
