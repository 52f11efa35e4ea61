package ast

// Visitor has one method per node kind. Accept dispatches to the method for
// the receiver's kind and returns its error.
type Visitor interface {
	VisitProgram(n *Program) error
	VisitWhileStatement(n *WhileStatement) error
	VisitIfStatement(n *IfStatement) error
	VisitFromStatement(n *FromStatement) error
	VisitBreakStatement(n *BreakStatement) error
	VisitContinueStatement(n *ContinueStatement) error
	VisitReturnStatement(n *ReturnStatement) error
	VisitFunctionDeclaration(n *FunctionDeclaration) error
	VisitVariableDeclaration(n *VariableDeclaration) error
	VisitAssignmentStatement(n *AssignmentStatement) error
	VisitExpressionStatement(n *ExpressionStatement) error
	VisitBinaryExpression(n *BinaryExpression) error
	VisitUnaryExpression(n *UnaryExpression) error
	VisitTernaryExpression(n *TernaryExpression) error
	VisitListExpression(n *ListExpression) error
	VisitSetExpression(n *SetExpression) error
	VisitDictionaryExpression(n *DictionaryExpression) error
	VisitKeyValueExpression(n *KeyValueExpression) error
	VisitCall(n *Call) error
	VisitArgument(n *Argument) error
	VisitSubscriptedExpression(n *SubscriptedExpression) error
	VisitIdentifier(n *Identifier) error
	VisitIdDecl(n *IdDecl) error
	VisitParameter(n *Parameter) error
	VisitBooleanLiteral(n *BooleanLiteral) error
	VisitNumericLiteral(n *NumericLiteral) error
	VisitStringLiteral(n *StringLiteral) error
}

func (n *Program) Accept(v Visitor) error { return v.VisitProgram(n) }
func (n *WhileStatement) Accept(v Visitor) error { return v.VisitWhileStatement(n) }
func (n *IfStatement) Accept(v Visitor) error { return v.VisitIfStatement(n) }
func (n *FromStatement) Accept(v Visitor) error { return v.VisitFromStatement(n) }
func (n *BreakStatement) Accept(v Visitor) error { return v.VisitBreakStatement(n) }
func (n *ContinueStatement) Accept(v Visitor) error { return v.VisitContinueStatement(n) }
func (n *ReturnStatement) Accept(v Visitor) error { return v.VisitReturnStatement(n) }
func (n *FunctionDeclaration) Accept(v Visitor) error { return v.VisitFunctionDeclaration(n) }
func (n *VariableDeclaration) Accept(v Visitor) error { return v.VisitVariableDeclaration(n) }
func (n *AssignmentStatement) Accept(v Visitor) error { return v.VisitAssignmentStatement(n) }
func (n *ExpressionStatement) Accept(v Visitor) error { return v.VisitExpressionStatement(n) }
func (n *BinaryExpression) Accept(v Visitor) error { return v.VisitBinaryExpression(n) }
func (n *UnaryExpression) Accept(v Visitor) error { return v.VisitUnaryExpression(n) }
func (n *TernaryExpression) Accept(v Visitor) error { return v.VisitTernaryExpression(n) }
func (n *ListExpression) Accept(v Visitor) error { return v.VisitListExpression(n) }
func (n *SetExpression) Accept(v Visitor) error { return v.VisitSetExpression(n) }
func (n *DictionaryExpression) Accept(v Visitor) error { return v.VisitDictionaryExpression(n) }
func (n *KeyValueExpression) Accept(v Visitor) error { return v.VisitKeyValueExpression(n) }
func (n *Call) Accept(v Visitor) error { return v.VisitCall(n) }
func (n *Argument) Accept(v Visitor) error { return v.VisitArgument(n) }
func (n *SubscriptedExpression) Accept(v Visitor) error { return v.VisitSubscriptedExpression(n) }
func (n *Identifier) Accept(v Visitor) error { return v.VisitIdentifier(n) }
func (n *IdDecl) Accept(v Visitor) error { return v.VisitIdDecl(n) }
func (n *Parameter) Accept(v Visitor) error { return v.VisitParameter(n) }
func (n *BooleanLiteral) Accept(v Visitor) error { return v.VisitBooleanLiteral(n) }
func (n *NumericLiteral) Accept(v Visitor) error { return v.VisitNumericLiteral(n) }
func (n *StringLiteral) Accept(v Visitor) error { return v.VisitStringLiteral(n) }
