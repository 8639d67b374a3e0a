package eval

import (
	"github.com/cflat-go/cflat/internal/ast"
	"github.com/cflat-go/cflat/internal/runtime"
)

// enterLexicalScope brackets one nested block (compound statement, loop
// body, switch body): it advances the block/scope counters, remembers
// the stack depth and using-directive count at entry, and returns a
// cleanup that undoes all three in reverse (§3 block-level governs
// using-directive visibility; scoped stack values release in reverse
// order at scope exit).
func (i *Interpreter) enterLexicalScope() func() error {
	savedBlock, savedScope := i.ctx.EnterBlock()
	savedDepth := i.ctx.Stack.Depth()
	ns := i.ctx.Namespace
	usingMark := len(ns.UsingDirectives)
	return func() error {
		for len(ns.UsingDirectives) > usingMark {
			ns.PopUsingDirective()
		}
		return i.ctx.LeaveBlock(savedBlock, savedScope, func(level int) error {
			if err := ns.Instances.ReleaseInstances(level, true, i.runDestructor); err != nil {
				return err
			}
			return i.ctx.Stack.ReleaseTo(savedDepth, nil)
		})
	}
}

func (i *Interpreter) execBlock(b *ast.BlockStatement) error {
	leave := i.enterLexicalScope()
	var runErr error
	for _, s := range b.Statements {
		if _, err := i.execStatement(s); err != nil {
			runErr = err
			break
		}
		if i.ctx.Jump != JumpNone {
			break
		}
	}
	if err := leave(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (i *Interpreter) execIf(s *ast.IfStatement) error {
	cond, err := i.eval(s.Condition)
	if err != nil {
		return err
	}
	if cond.AsBool() {
		_, err := i.execStatement(s.Then)
		return err
	}
	if s.Else != nil {
		_, err := i.execStatement(s.Else)
		return err
	}
	return nil
}

// execSwitch implements fall-through: once a case (or default, if no
// case matches) is selected, every statement from there to the end of
// the switch runs until break/return/continue interrupts it (§8
// scenario 6).
func (i *Interpreter) execSwitch(s *ast.SwitchStatement) error {
	subject, err := i.eval(s.Subject)
	if err != nil {
		return err
	}

	matchIdx, defaultIdx := -1, -1
	for idx, c := range s.Cases {
		if c.Expr == nil {
			defaultIdx = idx
			continue
		}
		caseVal, err := i.eval(c.Expr)
		if err != nil {
			return err
		}
		if i.applyComparison("==", subject, caseVal).AsBool() {
			matchIdx = idx
			break
		}
	}
	if matchIdx == -1 {
		matchIdx = defaultIdx
	}
	if matchIdx == -1 {
		return nil
	}

	leave := i.enterLexicalScope()
	var runErr error
cases:
	for idx := matchIdx; idx < len(s.Cases); idx++ {
		for _, stmt := range s.Cases[idx].Statements {
			if _, err := i.execStatement(stmt); err != nil {
				runErr = err
				break cases
			}
			if i.ctx.Jump != JumpNone {
				break cases
			}
		}
	}
	if i.ctx.Jump == JumpBreak {
		i.ctx.Jump = JumpNone
	}
	if err := leave(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (i *Interpreter) execWhile(s *ast.WhileStatement) error {
	for {
		cond, err := i.eval(s.Condition)
		if err != nil {
			return err
		}
		if !cond.AsBool() {
			return nil
		}
		if _, err := i.execStatement(s.Body); err != nil {
			return err
		}
		switch i.ctx.Jump {
		case JumpBreak:
			i.ctx.Jump = JumpNone
			return nil
		case JumpReturn:
			return nil
		case JumpContinue:
			i.ctx.Jump = JumpNone
		}
	}
}

func (i *Interpreter) execDoWhile(s *ast.DoWhileStatement) error {
	for {
		if _, err := i.execStatement(s.Body); err != nil {
			return err
		}
		switch i.ctx.Jump {
		case JumpBreak:
			i.ctx.Jump = JumpNone
			return nil
		case JumpReturn:
			return nil
		case JumpContinue:
			i.ctx.Jump = JumpNone
		}
		cond, err := i.eval(s.Condition)
		if err != nil {
			return err
		}
		if !cond.AsBool() {
			return nil
		}
	}
}

func (i *Interpreter) execFor(s *ast.ForStatement) error {
	leave := i.enterLexicalScope()
	runErr := func() error {
		if s.Init != nil {
			if _, err := i.execStatement(s.Init); err != nil {
				return err
			}
		}
		for {
			if s.Condition != nil {
				cond, err := i.eval(s.Condition)
				if err != nil {
					return err
				}
				if !cond.AsBool() {
					return nil
				}
			}
			if _, err := i.execStatement(s.Body); err != nil {
				return err
			}
			if i.ctx.Jump == JumpBreak {
				i.ctx.Jump = JumpNone
				return nil
			}
			if i.ctx.Jump == JumpReturn {
				return nil
			}
			if i.ctx.Jump == JumpContinue {
				i.ctx.Jump = JumpNone
			}
			if s.Step != nil {
				if _, err := i.eval(s.Step); err != nil {
					return err
				}
			}
		}
	}()
	if err := leave(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// execRangeFor iterates an array value (or a pointer carrying decayed
// array element metadata); the begin()/end() iterator-contract form
// named as an open question is not implemented (§9 Open Questions).
func (i *Interpreter) execRangeFor(s *ast.RangeForStatement) error {
	rangeVal, err := i.eval(s.Range)
	if err != nil {
		return err
	}

	var elems []*runtime.Value
	switch {
	case rangeVal.Usage.IsArray():
		elems, _ = rangeVal.Data().([]*runtime.Value)
	case rangeVal.Usage.IsPointer():
		elems = rangeVal.AsAddr().Elems
	default:
		return runtimeErrorf(s.Line(), "range-based for requires an array range")
	}

	varUsage, err := i.resolveTypeUsage(s.Line(), s.VarType)
	if err != nil {
		return err
	}

	for _, elem := range elems {
		leave := i.enterLexicalScope()
		iterVal := elem
		if !varUsage.Reference {
			iterVal = runtime.NewHeap(varUsage)
			iterVal.SetData(elem.Data())
		}
		i.declareLocal(s.VarName, varUsage, iterVal)

		_, err := i.execStatement(s.Body)
		cerr := leave()
		if err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
		if i.ctx.Jump == JumpBreak {
			i.ctx.Jump = JumpNone
			break
		}
		if i.ctx.Jump == JumpReturn {
			break
		}
		if i.ctx.Jump == JumpContinue {
			i.ctx.Jump = JumpNone
		}
	}
	return nil
}

// execReturn writes the evaluated value into the active return slot
// (§3 return-value stack) and raises JumpReturn for callScriptFunction
// to consume.
func (i *Interpreter) execReturn(s *ast.ReturnStatement) error {
	if s.Value == nil {
		i.ctx.Jump = JumpReturn
		return nil
	}
	v, err := i.eval(s.Value)
	if err != nil {
		return err
	}
	if out := i.ctx.ReturnSlot(); out != nil {
		out.SetData(v.Data())
	}
	i.ctx.Jump = JumpReturn
	return nil
}
