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

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/replier/pkg/config"
	"laptudirm.com/x/replier/pkg/oracle"
	"laptudirm.com/x/replier/pkg/session"
)

// replier play
func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game against a UCI engine",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts a game against a UCI engine. Moves are entered
			in coordinate notation, like e2e4 or e7e8q for promotions, and
			the engine replies to each of them. Enter quit or exit to leave.

			The game starts from the position given with --fen. Without it
			you are asked for a FEN string, and a blank line starts from the
			standard position.

			The engine is taken from --engine, the $REPLIER_ENGINE variable,
			or the configuration file, in that order. If none is set, the
			engines arbiter installs are looked for in its binary directory
			and on $PATH.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			path, _ := flags.GetString("config")
			conf, err := config.Load(path)
			if err != nil {
				return err
			}

			if flags.Changed("engine") {
				conf.Engine.Cmd, _ = flags.GetString("engine")
			}

			if flags.Changed("arg") {
				conf.Engine.Arg, _ = flags.GetString("arg")
			}

			if flags.Changed("depth") {
				conf.Engine.Depth, _ = flags.GetInt("depth")
			}

			if flags.Changed("nodes") {
				conf.Engine.Nodes, _ = flags.GetInt("nodes")
			}

			if flags.Changed("movetime") {
				conf.MoveTime, _ = flags.GetDuration("movetime")
			}

			if flags.Changed("color") {
				conf.Color, _ = flags.GetString("color")
			}

			if noSpinner, _ := flags.GetBool("no-spinner"); noSpinner {
				conf.Spinner = false
			}

			engine, err := oracle.Detect(conf.Engine)
			if err != nil {
				// Play on anyway: the game is aborted when the engine is
				// first asked for a move.
				logrus.Warn(err)
				if engine.Cmd == "" {
					engine.Cmd = "stockfish"
				}
			}

			logrus.WithFields(logrus.Fields{
				"engine":   engine.Cmd,
				"movetime": conf.MoveTime,
			}).Debug("Configured engine")

			fen, _ := flags.GetString("fen")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := session.Run(ctx, session.Config{
				FEN:    fen,
				AskFEN: !flags.Changed("fen"),
				Human:  conf.Color,

				Oracle: oracle.NewClient(engine),
				Budget: conf.MoveTime,

				Input:  os.Stdin,
				Output: os.Stdout,

				Spinner: conf.Spinner,
			})
			if err != nil {
				return err
			}

			if !report.Quit {
				fmt.Printf("Result: %s\n", report.Result)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("fen", "", "FEN string of the starting position")
	flags.String("engine", "", "Command of the UCI engine to play against")
	flags.String("arg", "", "Arguments passed to the engine")
	flags.Int("depth", 0, "Limit the engine's search depth")
	flags.Int("nodes", 0, "Limit the engine's searched nodes")
	flags.Duration("movetime", config.Default().MoveTime, "Engine's thinking time per move")
	flags.String("color", "", "Side to play, white or black (default the side to move)")
	flags.String("config", "", "Path of the configuration file")
	flags.Bool("no-spinner", false, "Don't show a spinner while the engine thinks")

	return cmd
}
