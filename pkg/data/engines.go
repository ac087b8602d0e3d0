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

package data

// EngineInfo describes a well known UCI chess engine.
type EngineInfo struct {
	Name   string // name arbiter installs the engine under
	Binary string // usual executable name on $PATH
	Source string
	Author string
}

// Engines are the engines looked for when none is configured, strongest
// first.
var Engines = []EngineInfo{
	{Name: "Stockfish", Binary: "stockfish", Source: "https://github.com/official-stockfish/stockfish", Author: "the Stockfish Developers"},
	{Name: "Ethereal", Binary: "ethereal", Source: "https://github.com/AndyGrant/Ethereal", Author: "Andrew Grant"},
	{Name: "Stash", Binary: "stash", Source: "https://gitlab.com/mhouppin/stash-bot", Author: "Morgan Houppin"},
	{Name: "Mess", Binary: "mess", Source: "https://github.com/raklaptudirm/mess", Author: "Rak Laptudirm"},
}
