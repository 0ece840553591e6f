package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/cottand/datashape/internal/log"
	"github.com/cottand/datashape/parser"
	"github.com/cottand/datashape/unify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cmd")

var UnifyCmd = &cobra.Command{
	Use:   "unify ['lhs -> rhs' ...]",
	Short: "Unify datashape equations",
	Long: `Unify solves every equation given as an argument, together with the ones in the batch
file if one is given, as a single batch. Each equation reads 'lhs -> rhs': lhs coerces to rhs.`,
	Example: `  datashape unify '10, T1, int32 -> T2, T2, float32'
  datashape unify -f batch.yaml --format yaml`,
	RunE:         runUnify,
	SilenceUsage: true,
}

var (
	batchPath   *string
	format      *string
	maxRounds   *int
	logLevel    *int
	logSections *string
)

func init() {
	batchPath = UnifyCmd.Flags().StringP("file", "f", "", "YAML batch of equations")
	format = UnifyCmd.Flags().String("format", formatText, fmt.Sprintf("output format, one of %v", formats))
	maxRounds = UnifyCmd.Flags().Int("max-rounds", 0, "maximum solver rounds, 0 for the default")
	logLevel = UnifyCmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	logSections = UnifyCmd.Flags().String("log-sections", "", "comma separated sections to log below warn, empty for the defaults")
}

func runUnify(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))
	log.SetSections(strings.Split(*logSections, ",")...)
	if !slices.Contains(formats, *format) {
		return fmt.Errorf("unknown format '%s', expected one of %v", *format, formats)
	}

	settings := unify.Settings{MaxRounds: *maxRounds}
	var equations []unify.Equation
	if *batchPath != "" {
		f, err := os.Open(*batchPath)
		if err != nil {
			return errors.Wrap(err, "could not open batch")
		}
		defer f.Close()
		batch, err := LoadBatch(f)
		if err != nil {
			return errors.Wrapf(err, "could not load %s", *batchPath)
		}
		if equations, err = batch.Parse(); err != nil {
			return err
		}
		if settings.MaxRounds == 0 {
			settings.MaxRounds = batch.MaxRounds
		}
	}
	for _, arg := range args {
		lhs, rhs, err := parser.ParseEquation(arg)
		if err != nil {
			return errors.Wrapf(err, "could not parse '%s'", arg)
		}
		equations = append(equations, unify.Equation{Lhs: lhs, Rhs: rhs, Solve: true})
	}
	if len(equations) == 0 {
		return fmt.Errorf("no equations given")
	}

	logger.Debug("unifying", "equations", len(equations), "maxRounds", settings.MaxRounds)
	res, err := unify.Unify(equations, settings)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), *format, res)
}
