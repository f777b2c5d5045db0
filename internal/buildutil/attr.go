// Package buildutil reads call attributes out of parsed MODULE.bazel files.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// Calls returns the top-level calls to fn in f, in file order.
func Calls(f *build.File, fn string) []*build.CallExpr {
	var calls []*build.CallExpr
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if ok && IsFuncCall(call, fn) {
			calls = append(calls, call)
		}
	}
	return calls
}

// String returns the named string attribute of call, or "" if it is missing
// or not a string literal.
func String(call *build.CallExpr, name string) string {
	if str, ok := attr(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Bool reports whether the named attribute of call is the identifier True.
func Bool(call *build.CallExpr, name string) bool {
	ident, ok := attr(call, name).(*build.Ident)
	return ok && ident.Name == "True"
}

// FuncName returns the name of a plain function call, or "" for method
// calls such as foo.bar().
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// IsFuncCall reports whether call invokes the function name.
func IsFuncCall(call *build.CallExpr, name string) bool {
	return FuncName(call) == name
}

func attr(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}
