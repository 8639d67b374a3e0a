// Package errcat is the fixed error-message catalogue keyed by error
// sentinel (§7, confirmed by original_source/Cflat.cpp's
// kPreprocessorErrorStrings/kCompileErrorStrings/kRuntimeErrorStrings
// tables indexed by a numeric error enum). Each sentinel carries a
// printf-style template; callers format it with fmt.Sprintf before
// handing the result to errors.NewCompilerError.
package errcat

// Preprocessor-stage templates (§7 "invalid directive, invalid macro
// argument count").
const (
	InvalidPreprocessorDirective = "invalid preprocessor directive '%s'"
	InvalidMacroArgumentCount    = "invalid number of arguments for macro '%s'"
)

// Compile-stage templates (§7's full list).
const (
	UndefinedVariable                = "undefined variable '%s'"
	UndefinedType                    = "undefined type '%s'"
	UndefinedFunction                = "undefined function '%s'"
	MissingMember                    = "member '%s' not found"
	MissingMethod                    = "method '%s' not found in '%s'"
	MissingStaticMethod              = "static method '%s' not found in '%s'"
	MissingStaticMember              = "static member '%s' not found in '%s'"
	MissingConstructor               = "no matching constructor for '%s'"
	NoDefaultConstructor              = "type '%s' has no default constructor"
	NoCopyConstructor                = "type '%s' has no copy constructor"
	InvalidOperator                  = "invalid operator '%s' for type '%s'"
	VariableRedefinition             = "variable '%s' already defined in this scope"
	ArrayInitializationExpected      = "array initialization expected"
	StaticPointersNotAllowed         = "static pointer casts are not allowed"
	DynamicCastNotAllowed            = "dynamic cast between unrelated types is not allowed"
	InvalidCast                      = "invalid cast"
	VoidFunctionReturningValue       = "function returning void cannot return a value"
	MissingReturnStatement           = "function does not return a value on all paths"
	UninitializedReference           = "reference '%s' must be initialized"
	IncompatibleReturnExpressionType = "incompatible type in return expression"
	NonHomogeneousTypeList           = "array initializer elements are not of a homogeneous type"
	TooManyArgumentsInAggregate      = "too many initializers for aggregate"
	MismatchingTypeInAggregate       = "initializer type does not match member '%s'"
	InvalidConditionalExpression     = "invalid conditional expression, expected ':'"
	InvalidEscapeSequence            = "invalid escape sequence '%s'"
	UnexpectedSymbol                 = "unexpected symbol '%s'"
	Expected                         = "expected '%s'"
	UnknownNamespace                 = "unknown namespace '%s'"
	InvalidAssignment                = "invalid assignment"
	InvalidNumericValue              = "invalid numeric value '%s'"
	CannotModifyConstExpression      = "cannot modify a const-qualified value"
	CannotCallNonConstMethod         = "cannot call a non-const method on a const value"
	InvalidMemberAccessOperatorPtr    = "use '.' to access a member through a non-pointer value"
	InvalidMemberAccessOperatorNonPtr = "use '->' to access a member through a pointer"
	InvalidType                      = "'%s' is not a valid type here"
)

// Runtime-stage templates (§7 "null pointer access, invalid array
// index, division by zero, missing function implementation").
const (
	NullPointerAccess             = "null pointer access ('%s')"
	InvalidArrayIndex             = "invalid array index: size %d, index %d"
	DivisionByZero                = "division by zero"
	MissingFunctionImplementation = "function '%s' was registered but has no implementation"
)
