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

// Package config loads replier's configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/replier/pkg/common"
	"laptudirm.com/x/replier/pkg/oracle"
)

// EngineEnv names the environment variable which overrides the engine
// command of the configuration file.
const EngineEnv = "REPLIER_ENGINE"

type Config struct {
	// Engine is the engine replying to the user's moves. An empty command
	// means the first known engine which can be found is used.
	Engine oracle.EngineConfig `yaml:"engine"`

	// MoveTime is the engine's thinking time per move.
	MoveTime time.Duration `yaml:"movetime"`

	// Color is the side the user plays. Empty means the side to move.
	Color string `yaml:"color"`

	Spinner bool `yaml:"spinner"`
}

// DefaultConfig is written to the configuration file on first use.
var DefaultConfig = heredoc.Doc(`
	# replier configuration

	engine:
	  # Command of the UCI engine to play against. Leave empty to use the
	  # first of Stockfish, Ethereal, Stash or Mess found in arbiter's
	  # binary directory or on $PATH.
	  cmd: ""
	  arg: ""
	  dir: ""
	  # UCI options sent after the handshake, like:
	  # options:
	  #   Threads: "1"
	  #   Hash: "16"
	  options: {}
	  depth: 0
	  nodes: 0
	  margin: 1s
	  handshake: 5s

	# Thinking time per engine move.
	movetime: 100ms

	# Side played by you, white or black. Empty plays the side to move.
	color: ""

	spinner: true
`)

// Default returns the configuration described by DefaultConfig.
func Default() Config {
	var config Config
	if err := yaml.Unmarshal([]byte(DefaultConfig), &config); err != nil {
		panic(fmt.Errorf("config: bad default: %w", err))
	}

	return config
}

// Setup writes the default configuration file if there isn't one.
func Setup() error {
	return common.TryCreate(common.ConfigFile, []byte(DefaultConfig))
}

// Load reads the configuration file at path on top of the defaults. The
// default file is created when it is missing, other missing files are an
// error.
func Load(path string) (Config, error) {
	config := Default()

	if path == "" {
		path = common.ConfigFile
	}

	if path == common.ConfigFile {
		if err := Setup(); err != nil {
			logrus.WithError(err).Warn("Unable to create configuration file")
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == common.ConfigFile:
		// Setup failed, go on with the defaults.
	case err != nil:
		return config, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if cmd := os.Getenv(EngineEnv); cmd != "" {
		logrus.Debugf("Engine command taken from $%s", EngineEnv)
		config.Engine.Cmd = cmd
	}

	return config, nil
}

// Marshal renders the configuration as YAML.
func (config Config) Marshal() ([]byte, error) {
	return yaml.Marshal(config)
}
