package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/bitpack/expr"
	"github.com/arloliu/bitpack/packet"
)

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <expression>",
		Short: "Encode an expression as a hex transmission",
		Long: `Build a packet tree from expression notation and print its hex encoding.

Operators are sum, product, min, max, gt, lt and eq. A version is written as
an @ suffix, and :bits selects the total-bits length descriptor.

Examples:
  bitpack encode 2021@6
  bitpack encode "(eq:bits@4 (sum@2 1@2 3@4) (product@6 2 2@2))"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := expr.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			hex, err := packet.Marshal(p)
			if err != nil {
				return err
			}
			a.log.Debug().Int("packets", p.Count()).Int("bits", p.BitLength).Msg("encoded")

			fmt.Fprintln(cmd.OutOrStdout(), hex)

			return nil
		},
	}
}
