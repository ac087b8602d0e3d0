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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineConfig describes how to start and drive a UCI engine.
type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	InitStr string `yaml:"init-string"`

	// Options are sent as setoption commands after the handshake.
	Options map[string]string `yaml:"options"`

	Depth int `yaml:"depth"`
	Nodes int `yaml:"nodes"`

	// Margin is how long past the move time a bestmove is still waited for.
	Margin time.Duration `yaml:"margin"`

	// Handshake bounds every wait for uciok and readyok.
	Handshake time.Duration `yaml:"handshake"`
}

// Defaults used for unset EngineConfig fields.
const (
	DefaultMargin    = time.Second
	DefaultHandshake = 5 * time.Second
)

func (config EngineConfig) withDefaults() EngineConfig {
	if config.Name == "" {
		config.Name = filepath.Base(config.Cmd)
	}

	if config.Margin <= 0 {
		config.Margin = DefaultMargin
	}

	if config.Handshake <= 0 {
		config.Handshake = DefaultHandshake
	}

	return config
}

// StartEngine starts the engine process described by the config and runs
// the UCI handshake. The process is killed if the context is cancelled.
// An Engine which was started successfully has to be released with Kill.
func StartEngine(ctx context.Context, config EngineConfig) (*Engine, error) {
	config = config.withDefaults()

	process := exec.CommandContext(ctx, config.Cmd, strings.Fields(config.Arg)...)
	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: config,
		Cmd:    process,
		stdin:  stdin,
		writer: bufio.NewWriter(stdin),
		lines:  make(chan string),
		done:   make(chan struct{}),
	}

	if err := process.Start(); err != nil {
		return nil, err
	}

	go engine.read(bufio.NewReader(stdout))

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			engine.Kill()
			return nil, err
		}
	}

	if err := engine.Initialize(); err != nil {
		engine.Kill()
		return nil, err
	}

	return engine, nil
}

type Engine struct {
	config EngineConfig

	*exec.Cmd

	stdin  io.Closer
	writer *bufio.Writer

	lines chan string
	done  chan struct{}

	// err is only read after lines has been closed.
	err error
}

func (engine *Engine) read(reader *bufio.Reader) {
	defer close(engine.lines)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			engine.err = err
			return
		}

		line = strings.Trim(line, " \n\t\r")
		logrus.Tracef("(%s)> %s", engine.config.Name, line)

		select {
		case engine.lines <- line:
		case <-engine.done:
			return
		}
	}
}

// Initialize runs the uci handshake and sends the configured options.
func (engine *Engine) Initialize() error {
	if err := engine.Write("uci"); err != nil {
		return err
	}

	if _, err := engine.Await("^uciok", engine.config.Handshake); err != nil {
		return fmt.Errorf("uci handshake: %w", err)
	}

	for name, value := range engine.config.Options {
		if err := engine.Write("setoption name %s value %s", name, value); err != nil {
			return err
		}
	}

	return engine.Synchronize()
}

// NewGame prepares the engine for a new game of chess.
func (engine *Engine) NewGame() error {
	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize()
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize() error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await("^readyok", engine.config.Handshake)
	return err
}

// QuitGrace is how long a released engine may take to exit after quit
// before it is killed.
const QuitGrace = 500 * time.Millisecond

// Kill releases the engine: it is asked to quit, killed if it doesn't
// within QuitGrace, and reaped, and the reader goroutine is stopped. Kill
// is safe to call on every exit path, even after the process has died on
// its own.
func (engine *Engine) Kill() {
	_ = engine.Write("quit")

	close(engine.done)
	_ = engine.stdin.Close()

	exited := make(chan error, 1)
	go func() { exited <- engine.Wait() }()

	timer := time.NewTimer(QuitGrace)
	defer timer.Stop()

	var err error
	select {
	case err = <-exited:
	case <-timer.C:
		_ = engine.Process.Kill()
		err = <-exited
	}

	if err != nil {
		logrus.Tracef("(%s) exited: %v", engine.config.Name, err)
	}
}

var (
	ErrReadTimeout = errors.New("engine: read i/o timeout")
	ErrExited      = errors.New("engine: process exited")
)

// Await is a utility function which waits for a line matching the given
// pattern from the engine with a fixed timeout.
func (engine *Engine) Await(pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// timer ran out: wait timeout
			return "", ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				// stdout was closed: the engine is gone
				if engine.err != nil && engine.err != io.EOF {
					return "", fmt.Errorf("%w: %v", ErrExited, engine.err)
				}

				return "", ErrExited
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

func (engine *Engine) Write(format string, a ...any) error {
	logrus.Tracef("("+engine.config.Name+")< "+format, a...)

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}
