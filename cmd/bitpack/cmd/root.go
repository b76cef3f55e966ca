// Package cmd implements the bitpack command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arloliu/bitpack/eval"
	"github.com/arloliu/bitpack/internal/config"
	"github.com/arloliu/bitpack/internal/logging"
	"github.com/arloliu/bitpack/packet"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool
	logLevel   string

	cfg config.Config
	log zerolog.Logger
}

// NewRootCmd builds the bitpack command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "bitpack",
		Short: "Decode and evaluate hierarchical packet transmissions",
		Long: `Decode hex-encoded packet transmissions, sum their versions and
evaluate the expressions they carry.

Examples:
  bitpack solve D2FE28                         # Solve one transmission
  bitpack solve --file input.txt               # Solve one transmission per line
  bitpack tree 9C0141080250320F1802104A08      # Show the packet tree
  bitpack encode "(sum 1 (product 2 3))"       # Encode an expression
  bitpack capture pack --out in.bpc input.txt  # Bundle transmissions`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"config file (default $"+config.EnvConfig+" or ./"+config.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	root.AddCommand(
		newSolveCmd(a),
		newTreeCmd(a),
		newEncodeCmd(a),
		newCaptureCmd(a),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logging.ConfigureRuntime()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lvl, ok, err := a.resolveLevel()
	if err != nil {
		return err
	}
	if ok {
		logging.SetLevel(lvl)
	}
	a.log = logging.Logger().With().Str("cmd", cmd.Name()).Logger()

	if cfg.Source != "" {
		a.log.Debug().Str("path", cfg.Source).Msg("loaded config")
	}

	return nil
}

// resolveLevel picks the log level from -v, --log-level, BITPACK_LOG_LEVEL
// and the config file, in that order. It reports false when none is set, so
// the profile default stays in effect.
func (a *app) resolveLevel() (zerolog.Level, bool, error) {
	if a.verbose {
		return zerolog.DebugLevel, true, nil
	}
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return zerolog.NoLevel, false, fmt.Errorf("unsupported log level %q", a.logLevel)
		}

		return lvl, true, nil
	}
	if lvl, ok := logging.EnvLevel(); ok {
		return lvl, true, nil
	}
	if a.cfg.LogLevel != "" {
		lvl, _ := logging.ParseLevel(a.cfg.LogLevel)
		return lvl, true, nil
	}

	return zerolog.NoLevel, false, nil
}

func (a *app) decoder() (*packet.Decoder, error) {
	return packet.NewDecoder(a.cfg.DecoderOptions()...)
}

func (a *app) evaluator() (*eval.Evaluator, error) {
	return eval.NewEvaluator(a.cfg.EvaluatorOptions()...)
}
