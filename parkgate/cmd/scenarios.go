package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/parkgate/stimulus"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the bundled stimulus scenarios.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			for _, name := range stimulus.BuiltinNames() {
				s, err := stimulus.Builtin(name)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%-18s %3d ticks  %s\n",
					name, s.TotalTicks(), s.Description)
			}

			return nil
		},
	}
}
