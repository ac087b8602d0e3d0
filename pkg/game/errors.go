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

// MalformedMoveError is returned for move tokens which do not follow the
// coordinate move grammar.
type MalformedMoveError struct {
	Token  string
	Reason string
}

func (err *MalformedMoveError) Error() string {
	return fmt.Sprintf("malformed move %q: %s", err.Token, err.Reason)
}

// IllegalMoveError is returned for well formed moves which can't be
// played in the position they were tried in.
type IllegalMoveError struct {
	Move Move
	FEN  string
}

func (err *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in position %s", err.Move, err.FEN)
}

// InvalidPositionError is returned for FEN strings that do not describe
// a valid chess position.
type InvalidPositionError struct {
	FEN    string
	Reason string
}

func (err *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid fen %q: %s", err.FEN, err.Reason)
}
