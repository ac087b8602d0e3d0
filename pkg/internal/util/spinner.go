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

package util

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

const SPIN = 31

// Spinner shows that the program is working on something. A nil *Spinner
// is valid and does nothing, so callers can disable it by not making one.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner drawing to w with the given suffix. The
// spinner only draws when w is a terminal.
func NewSpinner(w io.Writer, suffix string) *Spinner {
	return &Spinner{
		s: spinner.New(
			spinner.CharSets[SPIN], 100*time.Millisecond,
			spinner.WithWriter(w),
			spinner.WithSuffix(suffix),
		),
	}
}

// StartSpinner starts the ~working~ spinner.
func (s *Spinner) StartSpinner() {
	if s != nil {
		s.s.Start()
	}
}

// PauseSpinner stops the spinner and clears it from the terminal.
func (s *Spinner) PauseSpinner() {
	if s != nil {
		s.s.Stop()
	}
}
