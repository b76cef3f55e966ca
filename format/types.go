package format

type (
	TypeID          uint8
	LengthType      uint8
	OverflowPolicy  uint8
	CompressionType uint8
)

const (
	TypeSum         TypeID = 0 // TypeSum adds the values of all sub-packets.
	TypeProduct     TypeID = 1 // TypeProduct multiplies the values of all sub-packets.
	TypeMinimum     TypeID = 2 // TypeMinimum selects the smallest sub-packet value.
	TypeMaximum     TypeID = 3 // TypeMaximum selects the largest sub-packet value.
	TypeLiteral     TypeID = 4 // TypeLiteral carries a variable-length integer.
	TypeGreaterThan TypeID = 5 // TypeGreaterThan yields 1 if the first sub-packet is greater.
	TypeLessThan    TypeID = 6 // TypeLessThan yields 1 if the first sub-packet is less.
	TypeEqualTo     TypeID = 7 // TypeEqualTo yields 1 if both sub-packets are equal.

	// MaxTypeID is the largest type id a 3-bit field can carry.
	MaxTypeID TypeID = 7
)

const (
	// LengthTotalBits is indicator 0: a 15-bit count of sub-packet bits follows.
	LengthTotalBits LengthType = 0
	// LengthSubPacketCount is indicator 1: an 11-bit count of sub-packets follows.
	LengthSubPacketCount LengthType = 1
)

const (
	OverflowError    OverflowPolicy = 0x1 // OverflowError fails evaluation on sum or product overflow.
	OverflowSaturate OverflowPolicy = 0x2 // OverflowSaturate clamps results to math.MaxUint64.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Operator names used by the expression notation.
var typeNames = [...]string{"sum", "product", "min", "max", "literal", "gt", "lt", "eq"}

func (t TypeID) String() string {
	if t > MaxTypeID {
		return "unknown"
	}

	return typeNames[t]
}

// IsLiteral reports whether t denotes a literal packet.
func (t TypeID) IsLiteral() bool {
	return t == TypeLiteral
}

// IsComparison reports whether t is one of the binary comparison operators.
func (t TypeID) IsComparison() bool {
	return t >= TypeGreaterThan && t <= TypeEqualTo
}

// ParseTypeID returns the operator type for a notation name such as "sum" or "gt".
func ParseTypeID(name string) (TypeID, bool) {
	for i, n := range typeNames {
		if n == name {
			return TypeID(i), true //nolint: gosec
		}
	}

	return 0, false
}

// FieldBits returns the width of the length field that follows the indicator bit.
func (l LengthType) FieldBits() int {
	if l == LengthSubPacketCount {
		return 11
	}

	return 15
}

// HeaderBits returns the size of the header plus length descriptor.
func (l LengthType) HeaderBits() int {
	return 6 + 1 + l.FieldBits()
}

func (l LengthType) String() string {
	switch l {
	case LengthTotalBits:
		return "TotalBits"
	case LengthSubPacketCount:
		return "SubPacketCount"
	default:
		return "Unknown"
	}
}

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowError:
		return "Error"
	case OverflowSaturate:
		return "Saturate"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a lower-case configuration name to a CompressionType.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

// ParseOverflowPolicy maps a lower-case configuration name to an OverflowPolicy.
func ParseOverflowPolicy(name string) (OverflowPolicy, bool) {
	switch name {
	case "error", "":
		return OverflowError, true
	case "saturate":
		return OverflowSaturate, true
	default:
		return 0, false
	}
}
