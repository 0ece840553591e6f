package cmd

import (
	"fmt"

	"github.com/cottand/datashape/parser"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check SHAPE...",
	Short:        "Check that datashapes are well formed",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	var errs *shapeerr.Errors
	for _, arg := range args {
		s, err := parser.Parse(arg)
		if err != nil {
			var shapeErr shapeerr.Error
			if !errors.As(err, &shapeErr) {
				shapeErr = shapeerr.New(shapeerr.Unclassified{From: err})
			}
			errs = errs.With(shapeErr)
			continue
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tfree: %v\n", s, shape.FreeVars(s))
	}
	if errs.HasError() {
		logger.Debug("malformed shapes", "errors", errs)
		return errs
	}
	return nil
}
