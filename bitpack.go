// Package bitpack decodes hierarchical packet transmissions and evaluates
// the expressions they carry.
//
// A transmission is a hex string holding a single top-level packet. Packets
// are either literals (variable-length integers) or operators over nested
// sub-packets; see the packet package for the wire format.
//
// # Basic Usage
//
//	res, err := bitpack.Solve("9C0141080250320F1802104A08")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.VersionSum, res.Value) // 20 1
//
// For finer control, decode once and run the folds separately:
//
//	p, err := bitpack.Decode(input)
//	sum := bitpack.VersionSum(p)
//	value, err := bitpack.Evaluate(p)
//
// # Package Structure
//
// This package wraps the lower-level packages for the common path:
//   - bitstream: bit cursor over hex text and a bit writer
//   - packet: packet tree, parser (Decoder) and encoder (Marshal)
//   - eval: version sum and expression evaluation
//   - expr: textual notation for packet trees
//   - capture: compressed container for many transmissions
//   - errs: error values
package bitpack

import (
	"strings"

	"github.com/arloliu/bitpack/eval"
	"github.com/arloliu/bitpack/packet"
)

// Result summarizes a decoded and evaluated transmission.
type Result struct {
	// VersionSum is the sum of every packet version in the transmission.
	VersionSum uint64
	// Value is the evaluated expression of the top-level packet.
	Value uint64
	// Packets is the number of packets in the tree.
	Packets int
	// BitLength is the number of bits occupied by the top-level packet.
	BitLength int
}

// Decode parses a transmission with the default decoder.
//
// Surrounding whitespace is trimmed; the remaining text must be hex digits.
//
// Parameters:
//   - hex: The transmission
//
// Returns:
//   - *packet.Packet: The top-level packet
//   - error: An error matching errs.ErrMalformedInput
func Decode(hex string) (*packet.Packet, error) {
	return packet.Decode(strings.TrimSpace(hex))
}

// VersionSum returns the sum of the version fields of p and its descendants.
func VersionSum(p *packet.Packet) uint64 {
	return eval.VersionSum(p)
}

// Evaluate computes the value of the expression rooted at p.
func Evaluate(p *packet.Packet) (uint64, error) {
	return eval.Evaluate(p)
}

// Solve decodes a transmission and computes both folds.
//
// Parameters:
//   - hex: The transmission
//
// Returns:
//   - Result: Version sum, value and tree statistics
//   - error: A decode or evaluation error; no partial result is returned
func Solve(hex string) (Result, error) {
	p, err := Decode(hex)
	if err != nil {
		return Result{}, err
	}

	return SolvePacket(p, nil)
}

// SolvePacket computes both folds over an already decoded tree.
//
// A nil evaluator selects the default configuration.
func SolvePacket(p *packet.Packet, e *eval.Evaluator) (Result, error) {
	var (
		value uint64
		err   error
	)
	if e == nil {
		value, err = eval.Evaluate(p)
	} else {
		value, err = e.Evaluate(p)
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		VersionSum: eval.VersionSum(p),
		Value:      value,
		Packets:    p.Count(),
		BitLength:  p.BitLength,
	}, nil
}
