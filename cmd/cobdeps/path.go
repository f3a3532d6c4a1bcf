// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/cobdeps/cobdeps/internal/copybook"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/spf13/cobra"
)

// newPathCommand prints where a copybook is or would be downloaded, so
// editors and build scripts can add the folders to their include paths.
func newPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <profile> <dataset> [copybook]",
		Short: "Print the local folder or file of a downloaded copybook",
		Long: `Print the local folder or file of a downloaded copybook.

Copybooks are stored as <root>/zowe/copybooks/<profile>/<dataset>/<copybook>,
where <root> is cache_root or, when empty, the workspace folder.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if err := profile.Name(args[0]).Validate(); err != nil {
				return err
			}
			if err := dataset.Location(args[1]).Validate(); err != nil {
				return err
			}
			root := cfg.CacheRoot
			if root == "" {
				if root, err = app.workspaceDir(); err != nil {
					return err
				}
			}
			if len(args) == 2 {
				_, err = fmt.Fprintln(app.stdout, copybook.DatasetPath(args[0], args[1], root))
				return err
			}
			if err := copybook.Name(args[2]).Validate(0); err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, copybook.CopybookPath(args[0], args[1], args[2], root))
			return err
		},
	}
}
