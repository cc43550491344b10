package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veeox/veeox/api"
	"github.com/veeox/veeox/core/codec"
	"github.com/veeox/veeox/web"
)

func namesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "names [type]",
		Short: "Print the identifying names of the veeox types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := web.Names()
			if len(args) == 1 {
				name, ok := web.NameOf(args[0])
				if !ok {
					return fmt.Errorf("unknown type: %s", args[0])
				}
				names = []string{name}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(cmd, names)
			}
			for _, n := range names {
				if _, err := fmt.Fprintln(out, n); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}

func versionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := api.Info()
			if asJSON {
				return writeJSON(cmd, info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := codec.JSON().Encode(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
