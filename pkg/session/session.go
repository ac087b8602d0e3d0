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

// Package session runs an interactive game on a pair of text streams,
// reading the human's moves and printing the game as it goes.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/replier/pkg/game"
	"laptudirm.com/x/replier/pkg/internal/util"
	"laptudirm.com/x/replier/pkg/match"
)

type Config struct {
	// FEN is the starting position. When it is empty the standard position
	// is used, unless AskFEN is set and the user is prompted for one.
	FEN    string
	AskFEN bool

	// Human is the side the user plays, "white" or "black". Empty means
	// the side to move in the starting position.
	Human string

	Oracle match.Oracle
	Budget time.Duration

	Input  io.Reader
	Output io.Writer

	// Spinner shows a spinner on Output while the engine thinks.
	Spinner bool
}

// Report summarises a finished session.
type Report struct {
	ID      uuid.UUID
	Outcome game.Outcome
	Reason  string
	Result  game.Result
	Moves   []game.Move

	// Quit is set if the user left before the game ended.
	Quit bool
}

type session struct {
	config Config
	log    *logrus.Entry
	out    io.Writer
	lines  <-chan string

	spinner *util.Spinner
}

// Run plays one game. It returns once the game is over, or when the user
// quits, the input ends, or ctx is cancelled. Errors are only returned
// for sessions which could not start.
func Run(ctx context.Context, config Config) (Report, error) {
	report := Report{ID: uuid.New()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &session{
		config: config,
		log:    logrus.WithField("game", report.ID.String()),
		out:    config.Output,
		lines:  readLines(ctx, config.Input),
	}

	if s.out == nil {
		s.out = io.Discard
	}

	if config.Spinner {
		s.spinner = util.NewSpinner(s.out, " Engine is thinking...")
	}

	s.println("Welcome to the Chess Move Replier!")

	fen, ok := s.startingFEN(ctx)
	if !ok {
		report.Quit = true
		return report, nil
	}

	pos := game.NewPosition()
	if fen != "" {
		var err error
		if pos, err = game.ParseFEN(fen); err != nil {
			return report, err
		}
	}

	human := pos.SideToMove()
	if config.Human != "" {
		var err error
		if human, err = game.ParseColor(config.Human); err != nil {
			return report, err
		}
	}

	m, err := match.New(match.Config{
		Position: pos,
		Human:    human,
		Oracle:   config.Oracle,
		Budget:   config.Budget,
	})
	if err != nil {
		return report, err
	}

	s.log.WithFields(logrus.Fields{
		"fen":   pos.FEN(),
		"human": human,
	}).Info("Game started")

	report.Quit = !s.loop(ctx, m)

	report.Outcome = m.Outcome()
	report.Reason = m.Reason()
	report.Result = m.Result()
	report.Moves = m.Position().Moves()

	s.log.WithFields(logrus.Fields{
		"outcome": report.Outcome,
		"result":  report.Result,
		"moves":   len(report.Moves),
		"quit":    report.Quit,
	}).Info("Game finished")

	return report, nil
}

// startingFEN works out the starting position's notation. An empty
// string stands for the standard position. It returns false if the user
// left at the prompt.
func (s *session) startingFEN(ctx context.Context) (string, bool) {
	if s.config.FEN != "" || !s.config.AskFEN {
		return s.config.FEN, true
	}

	s.println("Enter a FEN string to set the starting position, or leave blank for a new game.")
	s.print("Enter FEN: ")

	line, ok := s.readLine(ctx)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(line), true
}

// loop runs the turn cycle until the game is over, returning true, or
// until the user leaves, returning false.
func (s *session) loop(ctx context.Context, m *match.Match) bool {
	shown := -1
	for {
		pos := m.Position()

		// Show the board once per position, not after every rejection.
		if len(pos.Moves()) != shown {
			shown = len(pos.Moves())
			s.println("\nCurrent Board State:")
			s.println(pos.String())
		}

		switch m.State() {
		case match.GameOver:
			s.printf("\nGame over: %s (%s)\n", m.Outcome(), m.Result())
			if reason := m.Reason(); reason != "" {
				s.printf("Reason: %s\n", reason)
			}

			return true

		case match.AwaitingHumanMove:
			s.printf("It's %s's turn.\n", pos.SideToMove())
			s.print("\nEnter your move in UCI format (e.g., e2e4): ")

			line, ok := s.readLine(ctx)
			if !ok {
				s.println("\nExiting game.")
				return false
			}

			token := strings.TrimSpace(line)
			switch strings.ToLower(token) {
			case "":
				continue
			case "quit", "exit":
				s.println("Exiting game.")
				return false
			}

			mov, err := m.Play(token)
			if err != nil {
				s.reject(err)
				continue
			}

			s.log.WithField("move", mov).Debug("Human moved")

		case match.AwaitingOracleMove:
			s.printf("It's %s's turn.\n", pos.SideToMove())
			s.println("Engine is thinking...")

			s.spinner.StartSpinner()
			mov, err := m.Reply(ctx)
			s.spinner.PauseSpinner()

			if err != nil {
				s.log.WithError(err).Warn("Engine failed to reply")
				s.printf("The engine could not reply: %v\n", err)
				continue
			}

			s.log.WithField("move", mov).Debug("Engine moved")
			s.printf("\nEngine's reply move (UCI): %s\n", mov)
		}
	}
}

// reject tells the user why their move wasn't played.
func (s *session) reject(err error) {
	var malformed *game.MalformedMoveError
	var illegal *game.IllegalMoveError

	switch {
	case errors.As(err, &malformed):
		s.printf("Invalid UCI format (%s). Please use a format like 'e2e4'.\n", malformed.Reason)
	case errors.As(err, &illegal):
		s.printf("%s is not a legal move. Please try again.\n", illegal.Move)
	default:
		s.printf("Move rejected: %v\n", err)
	}
}

// readLines feeds the lines of r to the returned channel, which is closed
// once r is exhausted or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	if r == nil {
		close(lines)
		return lines
	}

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

// readLine waits for the next line of input. It returns false when the
// input has ended or ctx is done.
func (s *session) readLine(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-s.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func (s *session) print(a ...any) {
	_, _ = fmt.Fprint(s.out, a...)
}

func (s *session) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *session) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}
