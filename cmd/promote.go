package cmd

import (
	"fmt"

	"github.com/cottand/datashape/lattice"
	"github.com/cottand/datashape/shapeerr"
	"github.com/spf13/cobra"
)

var PromoteCmd = &cobra.Command{
	Use:          "promote TYPE TYPE...",
	Short:        "Print the type every given scalar type promotes to",
	RunE:         runPromote,
	Args:         cobra.MinimumNArgs(2),
	SilenceUsage: true,
}

func runPromote(cmd *cobra.Command, args []string) error {
	types := make([]lattice.Type, len(args))
	for i, arg := range args {
		t, ok := lattice.Lookup(arg)
		if !ok {
			return fmt.Errorf("unknown scalar type '%s'", arg)
		}
		types[i] = t
	}
	join := types[0]
	for _, t := range types[1:] {
		next, ok := lattice.Join(join, t)
		if !ok {
			return shapeerr.New(shapeerr.NewMeasureConflict{First: join.String(), Second: t.String()})
		}
		join = next
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), join)
	return err
}
