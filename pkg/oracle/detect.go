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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/replier/pkg/common"
	"laptudirm.com/x/replier/pkg/data"
	"laptudirm.com/x/replier/pkg/internal/util"
)

var ErrNotFound = errors.New("oracle: engine not found")

// SearchDirs are searched for the known engines before $PATH is.
var SearchDirs = []string{common.ArbiterBinaries}

// Detect resolves the engine executable of the given config. A configured
// Cmd is looked up as is; otherwise the known engines are searched for in
// SearchDirs and then on $PATH.
func Detect(config EngineConfig) (EngineConfig, error) {
	if config.Cmd != "" {
		path, err := resolve(config.Cmd)
		if err != nil {
			return config, fmt.Errorf("%w: %s: %v", ErrNotFound, config.Cmd, err)
		}

		config.Cmd = path
		return config, nil
	}

	for _, info := range data.Engines {
		path, err := Find(info)
		if err != nil {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"engine": info.Name,
			"path":   path,
		}).Debug("Detected engine")

		config.Cmd = path
		if config.Name == "" {
			config.Name = info.Name
		}

		return config, nil
	}

	return config, ErrNotFound
}

// Find looks for a known engine in SearchDirs, under its name or binary
// name, and then on $PATH.
func Find(info data.EngineInfo) (string, error) {
	var candidates []string
	for _, dir := range SearchDirs {
		candidates = append(candidates,
			filepath.Join(dir, info.Name),
			filepath.Join(dir, info.Binary),
		)
	}
	candidates = append(candidates, info.Binary)

	for _, candidate := range candidates {
		if path, err := resolve(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, info.Name)
}

// resolve finds the executable a command refers to. Bare names are looked
// up on $PATH, paths are checked directly.
func resolve(cmd string) (string, error) {
	if !strings.ContainsRune(cmd, filepath.Separator) && !strings.ContainsRune(cmd, '/') {
		return exec.LookPath(cmd)
	}

	info, err := os.Stat(cmd)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("is a directory")
	}

	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return "", errors.New("not executable")
	}

	return filepath.Abs(cmd)
}

// Installed lists the executables in SearchDirs in natural order, which
// puts engine versions like stockfish-9 before stockfish-16.
func Installed() []string {
	var found []string
	for _, dir := range SearchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logrus.Tracef("Skipping %s: %v", dir, err)
			continue
		}

		for _, entry := range entries {
			path, err := resolve(filepath.Join(dir, entry.Name()))
			if err == nil {
				found = append(found, path)
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return util.AlphanumLess(filepath.Base(found[i]), filepath.Base(found[j]))
	})

	return found
}
