package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/bitpack"
	"github.com/arloliu/bitpack/eval"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/packet"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		file     string
		saturate bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "solve [hex...]",
		Short: "Print the version sum and value of transmissions",
		Long: `Decode each transmission and print its version sum and value.

Transmissions come from the arguments, from --file (one per line), or from
standard input when neither is given.

Examples:
  bitpack solve 8A004A801A8002F478
  bitpack solve --file input.txt
  echo C200B40A82 | bitpack solve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if saturate {
				a.cfg.Overflow = format.OverflowSaturate
			}
			if strict {
				a.cfg.StrictPadding = true
			}

			inputs, err := readInputs(cmd, args, file)
			if err != nil {
				return err
			}

			d, err := a.decoder()
			if err != nil {
				return err
			}
			e, err := a.evaluator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, hex := range inputs {
				res, err := a.solve(d, e, hex)
				if err != nil {
					if len(inputs) > 1 {
						return fmt.Errorf("transmission %d: %w", i, err)
					}

					return err
				}
				fmt.Fprintf(out, "version_sum=%d value=%d\n", res.VersionSum, res.Value)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read transmissions from file, one per line")
	cmd.Flags().BoolVar(&saturate, "saturate", false, "clamp arithmetic overflow instead of failing")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject non-zero bits after the top-level packet")

	return cmd
}

func (a *app) solve(d *packet.Decoder, e *eval.Evaluator, hex string) (bitpack.Result, error) {
	p, err := d.Decode(hex)
	if err != nil {
		a.log.Debug().Err(err).Int("hex_digits", len(hex)).Msg("decode failed")
		return bitpack.Result{}, err
	}

	res, err := bitpack.SolvePacket(p, e)
	if err != nil {
		a.log.Debug().Err(err).Int("hex_digits", len(hex)).Msg("evaluation failed")
		return bitpack.Result{}, err
	}

	a.log.Debug().
		Int("hex_digits", len(hex)).
		Int("bits", res.BitLength).
		Int("packets", res.Packets).
		Uint64("version_sum", res.VersionSum).
		Uint64("value", res.Value).
		Msg("solved")

	return res, nil
}

// readInputs collects non-empty, trimmed lines from args, a file, or stdin.
func readInputs(cmd *cobra.Command, args []string, file string) ([]string, error) {
	if len(args) > 0 && file != "" {
		return nil, fmt.Errorf("give transmissions as arguments or --file, not both")
	}
	if len(args) > 0 {
		out := make([]string, 0, len(args))
		for _, arg := range args {
			out = append(out, strings.TrimSpace(arg))
		}

		return out, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no transmissions given")
	}

	return out, nil
}
