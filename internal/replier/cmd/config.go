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

	"github.com/spf13/cobra"

	"laptudirm.com/x/replier/pkg/common"
	"laptudirm.com/x/replier/pkg/config"
)

// replier config
func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration in use",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = common.ConfigFile
			}

			if only, _ := cmd.Flags().GetBool("path"); only {
				fmt.Println(path)
				return nil
			}

			conf, err := config.Load(path)
			if err != nil {
				return err
			}

			data, err := conf.Marshal()
			if err != nil {
				return err
			}

			fmt.Printf("\x1b[34m# %s\x1b[0m\n%s", path, data)
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path of the configuration file")
	cmd.Flags().Bool("path", false, "Only print the configuration file's path")

	return cmd
}
