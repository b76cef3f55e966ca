package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/bitpack/expr"
	"github.com/arloliu/bitpack/packet"
)

func newTreeCmd(a *app) *cobra.Command {
	var asExpr bool

	cmd := &cobra.Command{
		Use:   "tree <hex>",
		Short: "Show the packet tree of a transmission",
		Long: `Decode a transmission and print one line per packet with its bit
offset, length, version and type.

Examples:
  bitpack tree 38006F45291200
  bitpack tree --expr 9C0141080250320F1802104A08`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.decoder()
			if err != nil {
				return err
			}
			p, err := d.Decode(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			if asExpr {
				fmt.Fprintln(cmd.OutOrStdout(), expr.Format(p))
				return nil
			}
			writeTree(cmd.OutOrStdout(), p)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asExpr, "expr", false, "print the tree in expression notation")

	return cmd
}

func writeTree(w io.Writer, root *packet.Packet) {
	root.Walk(func(p *packet.Packet, depth int) bool {
		indent := strings.Repeat("  ", depth)
		switch pl := p.Payload.(type) {
		case packet.Literal:
			fmt.Fprintf(w, "%s[%d+%d] v%d literal %d\n", indent, p.Offset, p.BitLength, p.Version, pl.Value)
		case packet.Operator:
			fmt.Fprintf(w, "%s[%d+%d] v%d %s (%s, %d sub-packets)\n",
				indent, p.Offset, p.BitLength, p.Version, p.TypeID, pl.LengthType, len(pl.Children))
		}

		return true
	})
}
