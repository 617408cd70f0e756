package ast

// Statements

type VarDeclaration struct {
	nodeImpl
	statementMarker

	Name        string     `json:"name"`
	Initializer Expression `json:"initializer"`
}

func NewVarDeclaration(name string, initializer Expression) *VarDeclaration {
	return &VarDeclaration{nodeImpl: newNodeImpl(NodeVarDeclaration), Name: name, Initializer: initializer}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewAssignment(name string, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Name: name, Value: value}
}

type Print struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewPrint(expression Expression) *Print {
	return &Print{nodeImpl: newNodeImpl(NodePrint), Expression: expression}
}

// If has no else clause.
type If struct {
	nodeImpl
	statementMarker

	Condition  Expression  `json:"condition"`
	ThenBranch []Statement `json:"thenBranch"`
}

func NewIf(condition Expression, thenBranch []Statement) *If {
	return &If{nodeImpl: newNodeImpl(NodeIf), Condition: condition, ThenBranch: thenBranch}
}

type While struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhile(condition Expression, body []Statement) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Condition: condition, Body: body}
}

type Break struct {
	nodeImpl
	statementMarker
}

func NewBreak() *Break {
	return &Break{nodeImpl: newNodeImpl(NodeBreak)}
}
