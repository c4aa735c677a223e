package frontend

import (
	"strings"
	"testing"

	"github.com/oyc-lang/oyc/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ProgramNode {
	t.Helper()
	file := &source.File{Filename: "<test>", Contents: src, Lines: strings.Split(src, "\n")}
	prog, msgs := Parse(file)
	require.Empty(t, msgs, "parse errors: %v", msgs)
	return prog
}

func resolve(t *testing.T, src string) []string {
	t.Helper()
	file := &source.File{Filename: "<test>", Contents: src, Lines: strings.Split(src, "\n")}
	prog, msgs := Parse(file)
	require.Empty(t, msgs, "parse errors: %v", msgs)

	msgs = Resolve(file, prog)
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Make(false)
	}
	return out
}

func exprStmt(t *testing.T, prog *ProgramNode) Expr {
	t.Helper()
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ExprStmt)
	require.True(t, ok, "expected an ExprStmt, got %T", prog.Statements[0])
	return stmt.Argument
}

func TestArrayLiteralParsesBareAndExplicitIndexItems(t *testing.T) {
	prog := parse(t, `[] {0, 1, [2] = 2};`)
	lit, ok := exprStmt(t, prog).(*ArrayLiteral)
	require.True(t, ok)
	require.Len(t, lit.Items, 3)

	assert.Nil(t, lit.Items[0].Index)
	assert.Nil(t, lit.Items[1].Index)
	require.NotNil(t, lit.Items[2].Index)
	idx, ok := lit.Items[2].Index.(*IntLiteral)
	require.True(t, ok)
	assert.EqualValues(t, 2, idx.Value)
}

func TestStructLiteralParsesAllThreeItemForms(t *testing.T) {
	prog := parse(t, `struct {.a = 1, ["b"] = 2, c = 3};`)
	lit, ok := exprStmt(t, prog).(*StructLiteral)
	require.True(t, ok)
	require.Len(t, lit.Items, 3)

	dotKey, ok := lit.Items[0].Key.(*StrLiteral)
	require.True(t, ok)
	assert.Equal(t, "a", dotKey.Value)

	bracketKey, ok := lit.Items[1].Key.(*StrLiteral)
	require.True(t, ok)
	assert.Equal(t, "b", bracketKey.Value)

	bareKey, ok := lit.Items[2].Key.(*StrLiteral)
	require.True(t, ok)
	assert.Equal(t, "c", bareKey.Value)
}

func TestStructLiteralBracketKeyAcceptsArbitraryExpression(t *testing.T) {
	prog := parse(t, `struct {[1 + 1] = "two"};`)
	lit, ok := exprStmt(t, prog).(*StructLiteral)
	require.True(t, ok)
	require.Len(t, lit.Items, 1)

	_, ok = lit.Items[0].Key.(*BinaryExpr)
	assert.True(t, ok, "expected the bracket key to stay an arbitrary expression")
}

func TestForeachUsesColonNotInKeyword(t *testing.T) {
	prog := parse(t, `foreach (auto k, v : [] {1}) { trace(v); }`)
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ForeachStmt)
	assert.True(t, ok)
}

func TestInIsNoLongerAReservedKeyword(t *testing.T) {
	prog := parse(t, `auto in = 5;`)
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*DeclarationStmt)
	require.True(t, ok)
	assert.Equal(t, "in", decl.Assignee.Name)
}

func TestRequireParsesPathAndForwardedArguments(t *testing.T) {
	prog := parse(t, `require("mod.oyc", 1, "two");`)
	req, ok := exprStmt(t, prog).(*RequireExpr)
	require.True(t, ok)
	assert.Equal(t, "mod.oyc", req.Path.Value)
	require.Len(t, req.Arguments, 2)
	_, ok = req.Arguments[0].(*IntLiteral)
	assert.True(t, ok)
	_, ok = req.Arguments[1].(*StrLiteral)
	assert.True(t, ok)
}

func TestRequireWithNoArgumentsStillParses(t *testing.T) {
	prog := parse(t, `require("mod.oyc");`)
	req, ok := exprStmt(t, prog).(*RequireExpr)
	require.True(t, ok)
	assert.Empty(t, req.Arguments)
}

func TestArgvResolvesAtScriptTopLevelWithoutDeclaration(t *testing.T) {
	msgs := resolve(t, `auto x = argv[0]; trace(x);`)
	assert.Empty(t, msgs)
}

func TestTraceResolvesWithoutDeclaration(t *testing.T) {
	msgs := resolve(t, `trace(1, 2, 3);`)
	assert.Empty(t, msgs)
}

func TestUndeclaredVariableIsStillAnError(t *testing.T) {
	msgs := resolve(t, `trace(notDeclared);`)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "undeclared")
}
