// Package ast defines the closed set of tiny syntax tree nodes.
package ast

type NodeType string

const (
	NodeNumberLiteral  NodeType = "NumberLiteral"
	NodeVariableRef    NodeType = "VariableRef"
	NodeBinaryOp       NodeType = "BinaryOp"
	NodeVarDeclaration NodeType = "VarDeclaration"
	NodeAssignment     NodeType = "Assignment"
	NodePrint          NodeType = "Print"
	NodeIf             NodeType = "If"
	NodeWhile          NodeType = "While"
	NodeBreak          NodeType = "Break"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Operator is the literal text of a binary operator.
type Operator string

const (
	OpAdd          Operator = "+"
	OpSub          Operator = "-"
	OpMul          Operator = "*"
	OpDiv          Operator = "/"
	OpMod          Operator = "%"
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// IsComparison reports whether op yields a 0/1 truth value.
func (op Operator) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	default:
		return false
	}
}

// Precedence orders operators from loosest (comparisons) to tightest
// (multiplicative). Unknown operators report 0.
func (op Operator) Precedence() int {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return 1
	case OpAdd, OpSub:
		return 2
	case OpMul, OpDiv, OpMod:
		return 3
	default:
		return 0
	}
}

// Expressions

type NumberLiteral struct {
	nodeImpl
	expressionMarker

	Value int64 `json:"value"`
}

func NewNumberLiteral(value int64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type VariableRef struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewVariableRef(name string) *VariableRef {
	return &VariableRef{nodeImpl: newNodeImpl(NodeVariableRef), Name: name}
}

type BinaryOp struct {
	nodeImpl
	expressionMarker

	Left     Expression `json:"left"`
	Operator Operator   `json:"operator"`
	Right    Expression `json:"right"`
}

func NewBinaryOp(left Expression, operator Operator, right Expression) *BinaryOp {
	return &BinaryOp{nodeImpl: newNodeImpl(NodeBinaryOp), Left: left, Operator: operator, Right: right}
}
