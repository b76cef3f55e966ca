package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/bitpack/capture"
	"github.com/arloliu/bitpack/format"
)

func newCaptureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Bundle transmissions into compressed capture files",
	}
	cmd.AddCommand(newCapturePackCmd(a), newCaptureSolveCmd(a), newCaptureListCmd(a))

	return cmd
}

func newCapturePackCmd(a *app) *cobra.Command {
	var (
		out         string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "pack --out <file> [input]",
		Short: "Write transmissions from a text file (or stdin) into a capture",
		Long: `Read one transmission per line and write them into a capture file.

Examples:
  bitpack capture pack --out input.bpc input.txt
  bitpack capture pack --out input.bpc --compression s2 < input.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct := a.cfg.Compression
			if compression != "" {
				var ok bool
				if ct, ok = format.ParseCompressionType(strings.ToLower(compression)); !ok {
					return fmt.Errorf("unsupported compression %q (expected none, zstd, s2 or lz4)", compression)
				}
			}

			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			inputs, err := readInputs(cmd, nil, file)
			if err != nil {
				return err
			}

			w, err := capture.NewWriter(capture.WithCompression(ct))
			if err != nil {
				return err
			}
			defer w.Finish()

			for i, hex := range inputs {
				if err := w.Add(hex); err != nil {
					return fmt.Errorf("transmission %d: %w", i, err)
				}
			}
			data, err := w.Bytes()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil { //nolint: gosec
				return err
			}

			a.log.Info().
				Str("path", out).
				Int("transmissions", w.Len()).
				Int("bytes", len(data)).
				Stringer("compression", ct).
				Msg("wrote capture")

			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "capture file to write")
	cmd.Flags().StringVar(&compression, "compression", "", "body compression: none, zstd, s2 or lz4 (default from config)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newCaptureSolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "solve <file>",
		Short: "Solve every transmission in a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCapture(args[0])
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
			for i, hex := range c.All() {
				res, err := a.solve(d, e, hex)
				if err != nil {
					return fmt.Errorf("transmission %d: %w", i, err)
				}
				fmt.Fprintf(out, "%d\tversion_sum=%d value=%d\n", i, res.VersionSum, res.Value)
			}

			return nil
		},
	}
}

func newCaptureListCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "Print the header and transmissions of a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCapture(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			h := c.Header()
			fmt.Fprintf(out, "# version=%d compression=%s transmissions=%d body=%d checksum=%016x\n",
				h.Version, h.Compression, h.Count, h.RawSize, h.Checksum)
			for _, hex := range c.All() {
				fmt.Fprintln(out, hex)
			}

			return nil
		},
	}
}

func readCapture(path string) (*capture.Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c, err := capture.Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}
