// Package eval interprets packet trees.
//
// Two folds are provided: VersionSum adds up every version field, and
// Evaluate treats each operator type as an arithmetic or comparison
// expression over its sub-packets. Both are pure functions of the tree; a
// tree may be evaluated concurrently from several goroutines.
package eval

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/bitpack/errs"
	"github.com/arloliu/bitpack/format"
	"github.com/arloliu/bitpack/internal/options"
	"github.com/arloliu/bitpack/packet"
)

// VersionSum returns the sum of the version fields of p and all its descendants.
func VersionSum(p *packet.Packet) uint64 {
	sum := uint64(p.Version)
	for _, child := range p.Children() {
		sum += VersionSum(child)
	}

	return sum
}

// Evaluator computes the value of packet trees.
type Evaluator struct {
	overflow format.OverflowPolicy
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption = options.Option[*Evaluator]

// WithOverflowPolicy selects how sum and product overflow is handled.
//
// format.OverflowError (the default) fails evaluation with
// errs.ErrArithmeticOverflow; format.OverflowSaturate clamps the result to
// math.MaxUint64 and continues.
func WithOverflowPolicy(policy format.OverflowPolicy) EvaluatorOption {
	return options.New(func(e *Evaluator) error {
		switch policy {
		case format.OverflowError, format.OverflowSaturate:
			e.overflow = policy
			return nil
		default:
			return fmt.Errorf("eval: invalid overflow policy %d", policy)
		}
	})
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...EvaluatorOption) (*Evaluator, error) {
	e := &Evaluator{overflow: format.OverflowError}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

var defaultEvaluator, _ = NewEvaluator()

// Evaluate computes the value of p with the default Evaluator.
func Evaluate(p *packet.Packet) (uint64, error) {
	return defaultEvaluator.Evaluate(p)
}

// Evaluate computes the value of p.
//
// Operator semantics by type id:
//
//	0 sum      1 product   2 minimum   3 maximum
//	4 literal  5 greater   6 less      7 equal
//
// Comparisons yield 1 or 0 and require exactly two sub-packets. Sum, product,
// minimum and maximum require at least one.
//
// Returns:
//   - uint64: The value of the expression
//   - error: *errs.ShapeError for a wrong sub-packet count, or a
//     *errs.MalformedInputError for inconsistent packets and overflow
func (e *Evaluator) Evaluate(p *packet.Packet) (uint64, error) {
	if p.TypeID > format.MaxTypeID {
		return 0, errs.NewMalformed(errs.ErrUnknownTypeID, p.Offset, "type %d", p.TypeID)
	}

	if p.TypeID.IsLiteral() {
		v, ok := p.Value()
		if !ok {
			return 0, errs.NewMalformed(errs.ErrMissingLiteralValue, p.Offset, "")
		}

		return v, nil
	}

	op, ok := p.Payload.(packet.Operator)
	if !ok {
		return 0, errs.NewMalformed(errs.ErrPayloadMismatch, p.Offset, "type %s without sub-packets", p.TypeID)
	}
	if err := checkShape(p.TypeID, len(op.Children)); err != nil {
		return 0, err
	}

	values := make([]uint64, len(op.Children))
	for i, child := range op.Children {
		v, err := e.Evaluate(child)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}

	switch p.TypeID {
	case format.TypeSum:
		return e.sum(p, values)
	case format.TypeProduct:
		return e.product(p, values)
	case format.TypeMinimum:
		return minOf(values), nil
	case format.TypeMaximum:
		return maxOf(values), nil
	case format.TypeGreaterThan:
		return boolValue(values[0] > values[1]), nil
	case format.TypeLessThan:
		return boolValue(values[0] < values[1]), nil
	case format.TypeEqualTo:
		return boolValue(values[0] == values[1]), nil
	default:
		return 0, errs.NewMalformed(errs.ErrUnknownTypeID, p.Offset, "type %d", p.TypeID)
	}
}

func checkShape(typeID format.TypeID, count int) error {
	if typeID.IsComparison() {
		if count != 2 {
			return &errs.ShapeError{TypeID: uint8(typeID), ChildCount: count, Want: "exactly 2"}
		}

		return nil
	}

	if count == 0 {
		return &errs.ShapeError{TypeID: uint8(typeID), ChildCount: count, Want: "at least 1"}
	}

	return nil
}

func (e *Evaluator) sum(p *packet.Packet, values []uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		s, carry := bits.Add64(total, v, 0)
		if carry != 0 {
			if e.overflow == format.OverflowSaturate {
				return math.MaxUint64, nil
			}

			return 0, errs.NewMalformed(errs.ErrArithmeticOverflow, p.Offset, "sum exceeds 64 bits")
		}
		total = s
	}

	return total, nil
}

func (e *Evaluator) product(p *packet.Packet, values []uint64) (uint64, error) {
	// A zero factor decides the result even when other factors would overflow.
	for _, v := range values {
		if v == 0 {
			return 0, nil
		}
	}

	total := uint64(1)
	for _, v := range values {
		hi, lo := bits.Mul64(total, v)
		if hi != 0 {
			if e.overflow == format.OverflowSaturate {
				return math.MaxUint64, nil
			}

			return 0, errs.NewMalformed(errs.ErrArithmeticOverflow, p.Offset, "product exceeds 64 bits")
		}
		total = lo
	}

	return total, nil
}

func minOf(values []uint64) uint64 {
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}

	return m
}

func maxOf(values []uint64) uint64 {
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}

	return m
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
