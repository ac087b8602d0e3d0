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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"laptudirm.com/x/replier/pkg/data"
	"laptudirm.com/x/replier/pkg/oracle"
)

func Engines() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "Lists the known engines and where they were found",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("\u001B[32mKnown Engines\u001B[0m:\n\n")

			for _, info := range data.Engines {
				name := fmt.Sprintf("\x1b[34m%s\x1b[0m:", info.Name)

				path, err := oracle.Find(info)
				switch {
				case err == nil:
					fmt.Printf("- %-20s %s\n", name, path)
				case errors.Is(err, oracle.ErrNotFound):
					fmt.Printf("- %-20s \x1b[31mnot found\x1b[0m (%s)\n", name, info.Source)
				default:
					return err
				}
			}

			installed := oracle.Installed()
			if len(installed) == 0 {
				return nil
			}

			fmt.Print("\n\u001B[32mInstalled by Arbiter\u001B[0m:\n\n")
			for _, path := range installed {
				fmt.Printf("- %s\n", path)
			}

			return nil
		},
	}
}
