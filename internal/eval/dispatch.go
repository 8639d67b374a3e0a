package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/runtime"
)

// execStatement is the one-function-per-statement-kind dispatch table
// (§4.J). The returned Value is only meaningful for ExpressionStatement;
// a uniform Eval(node ast.Node) Value return surfaces Go errors
// explicitly instead of through an error slot.
func (i *Interpreter) execStatement(stmt ast.Statement) (*runtime.Value, error) {
	i.ctx.SetLine(stmt.Line())
	defer i.runHook()

	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return i.eval(s.Expr)
	case *ast.BlockStatement:
		return nil, i.execBlock(s)
	case *ast.IfStatement:
		return nil, i.execIf(s)
	case *ast.SwitchStatement:
		return nil, i.execSwitch(s)
	case *ast.WhileStatement:
		return nil, i.execWhile(s)
	case *ast.DoWhileStatement:
		return nil, i.execDoWhile(s)
	case *ast.ForStatement:
		return nil, i.execFor(s)
	case *ast.RangeForStatement:
		return nil, i.execRangeFor(s)
	case *ast.BreakStatement:
		i.ctx.Jump = JumpBreak
		return nil, nil
	case *ast.ContinueStatement:
		i.ctx.Jump = JumpContinue
		return nil, nil
	case *ast.ReturnStatement:
		return nil, i.execReturn(s)
	case *ast.VarDecl:
		return nil, i.execVarDecl(s)
	case *ast.UsingNamespaceStatement:
		return nil, i.execUsingNamespace(s)
	case *ast.UsingAliasStatement:
		return nil, i.execUsingAlias(s)
	case *ast.TypedefStatement:
		return nil, i.execTypedef(s)
	case *ast.NamespaceDecl:
		return nil, i.execNamespaceDecl(s)
	case *ast.StructDecl:
		return nil, i.execStructDecl(s)
	case *ast.EnumDecl:
		return nil, i.execEnumDecl(s)
	case *ast.FunctionDecl:
		return nil, i.execFunctionDecl(s)
	default:
		return nil, runtimeErrorf(stmt.Line(), "unhandled statement %T", stmt)
	}
}

// eval is the one-function-per-expression-kind dispatch table (§4.J).
func (i *Interpreter) eval(expr ast.Expression) (*runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return i.evalIntLiteral(e)
	case *ast.FloatLiteral:
		return i.evalFloatLiteral(e)
	case *ast.StringLiteral:
		return i.evalStringLiteral(e)
	case *ast.CharLiteral:
		return i.evalCharLiteral(e)
	case *ast.BoolLiteral:
		return i.evalBoolLiteral(e)
	case *ast.NullPtrLiteral:
		return i.evalNullPtrLiteral(e)
	case *ast.Identifier:
		return i.evalIdentifier(e)
	case *ast.MemberAccess:
		return i.evalMemberAccess(e)
	case *ast.ArrayElementAccess:
		return i.evalArrayElementAccess(e)
	case *ast.UnaryOperation:
		return i.evalUnaryOperation(e)
	case *ast.BinaryOperation:
		return i.evalBinaryOperation(e)
	case *ast.Parenthesized:
		return i.eval(e.Inner)
	case *ast.ConditionalExpression:
		return i.evalConditional(e)
	case *ast.Assignment:
		return i.evalAssignment(e)
	case *ast.SizeOfExpr:
		return i.evalSizeOf(e)
	case *ast.CastExpr:
		return i.evalCast(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.ArrayInitExpr:
		return i.evalArrayInit(e)
	case *ast.AggregateInitExpr:
		return i.evalAggregateInit(e)
	case *ast.ObjectConstructionExpr:
		return i.evalObjectConstruction(e)
	default:
		return nil, runtimeErrorf(expr.Line(), "unhandled expression %T", expr)
	}
}
