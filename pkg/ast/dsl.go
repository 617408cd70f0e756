package ast

// Short constructors used by tests and embedders.

func Num(value int64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Ref(name string) *VariableRef {
	return NewVariableRef(name)
}

func Bin(left Expression, operator Operator, right Expression) *BinaryOp {
	return NewBinaryOp(left, operator, right)
}

func Decl(name string, initializer Expression) *VarDeclaration {
	return NewVarDeclaration(name, initializer)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(name, value)
}

func Out(expression Expression) *Print {
	return NewPrint(expression)
}

func IfThen(condition Expression, body ...Statement) *If {
	return NewIf(condition, body)
}

func Loop(condition Expression, body ...Statement) *While {
	return NewWhile(condition, body)
}

func Brk() *Break {
	return NewBreak()
}
