package checker

// Type is the static kind of a tiny expression. Every runtime value is an
// integer; Bool marks the result of a comparison, which evaluates to 1 or 0.
type Type int

const (
	UnknownType Type = iota
	IntType
	BoolType
)

func (t Type) String() string {
	switch t {
	case IntType:
		return "Int"
	case BoolType:
		return "Bool"
	default:
		return "Unknown"
	}
}
