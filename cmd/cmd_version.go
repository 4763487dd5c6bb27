package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/core/constants"
	"github.com/gaze-network/drop-offerer/modules/drop"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":     constants.Version,
	"drop": drop.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show drop-offerer version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "drop"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, cmd *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
