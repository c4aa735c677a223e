package backend

import (
	"fmt"
	"strings"
	"testing"

	"github.com/oyc-lang/oyc/frontend"
	"github.com/oyc-lang/oyc/source"
	"github.com/stretchr/testify/require"
)

// captureHost is a Host that records trace output in memory and serves
// `require` loads from an in-memory file map, so end-to-end tests don't
// touch the filesystem
type captureHost struct {
	lines []string
	files map[string]string
}

func (h *captureHost) WriteLine(line string) {
	h.lines = append(h.lines, line)
}

func (h *captureHost) Load(path string) (string, error) {
	if contents, ok := h.files[path]; ok {
		return contents, nil
	}
	return "", fmt.Errorf("no such file: %s", path)
}

// run compiles and executes src to completion, returning its result value
// and the host that captured any trace output
func run(t *testing.T, src string, argv []Value, extraFiles map[string]string) (Value, *captureHost) {
	t.Helper()

	file := &source.File{Filename: "<test>", Contents: src, Lines: strings.Split(src, "\n")}

	prog, msgs := frontend.Parse(file)
	require.Empty(t, msgs, "parse errors: %v", msgs)

	msgs = frontend.Resolve(file, prog)
	require.Empty(t, msgs, "resolve errors: %v", msgs)

	proto := Compile(prog)

	host := &captureHost{files: extraFiles}
	result, err := Execute(proto, argv, host, ".")
	require.NoError(t, err)

	return result, host
}

func TestArgvIsBoundAsAnArrayLocal(t *testing.T) {
	_, host := run(t, `auto x = argv[0]; trace(x);`, []Value{Str("hi"), Str("hello")}, nil)
	require.Equal(t, []string{`"hi"`}, host.lines)
}

func TestArgvSizeofMatchesArgumentCount(t *testing.T) {
	_, host := run(t, `trace(sizeof(argv));`, []Value{Str("a"), Str("b"), Str("c")}, nil)
	require.Equal(t, []string{"3"}, host.lines)
}

func TestTraceFormatsMultipleArgsSpaceSeparated(t *testing.T) {
	_, host := run(t, `trace(1, "a", true, null);`, nil, nil)
	require.Equal(t, []string{`1 "a" true null`}, host.lines)
}

func TestArrayLiteralExplicitIndexFillsAndOverwrites(t *testing.T) {
	_, host := run(t, `trace([] {0, 1, null, 3, [2] = 2, [4] = 4});`, nil, nil)
	require.Equal(t, []string{"[] {0, 1, 2, 3, 4}"}, host.lines)
}

func TestArrayLiteralNestedBareArray(t *testing.T) {
	_, host := run(t, `trace([] {[] {1, 2}, 3});`, nil, nil)
	require.Equal(t, []string{"[] {[] {1, 2}, 3}"}, host.lines)
}

func TestStructLiteralFormsAllProduceTheSameKey(t *testing.T) {
	_, host := run(t, `
		auto s = struct {.a = 1, ["b"] = 2, c = 3};
		trace(s);
	`, nil, nil)
	require.Equal(t, []string{`struct {["a"] = 1, ["b"] = 2, ["c"] = 3}`}, host.lines)
}

func TestArrayDeleteTruncatesFromIndexOnward(t *testing.T) {
	_, host := run(t, `
		auto a = [] {1, 2, 3, 4};
		delete a[1];
		trace(a);
	`, nil, nil)
	require.Equal(t, []string{"[] {1}"}, host.lines)
}

func TestStructDeletePreservesRemainingOrder(t *testing.T) {
	_, host := run(t, `
		auto s = struct {.a = 1, .b = 2, .c = 3};
		delete s.b;
		trace(s);
	`, nil, nil)
	require.Equal(t, []string{`struct {["a"] = 1, ["c"] = 3}`}, host.lines)
}

func TestClosureCapturesUpvalueByReference(t *testing.T) {
	_, host := run(t, `
		auto counter = 0;
		auto inc = () {
			counter = counter + 1;
			return counter;
		};
		trace(inc());
		trace(inc());
		trace(counter);
	`, nil, nil)
	require.Equal(t, []string{"1", "2", "2"}, host.lines)
}

func TestCastsConvertBetweenTypes(t *testing.T) {
	_, host := run(t, `trace(int("42"), float(3), str(7), bool(0), bool(1));`, nil, nil)
	require.Equal(t, []string{`42 3 "7" false true`}, host.lines)
}

func TestSwitchFallsThroughWithoutBreak(t *testing.T) {
	_, host := run(t, `
		auto x = 2;
		switch (x) {
		case 1:
			trace("1");
		case 2:
			trace("2");
		case 3:
			trace("3");
			break;
		default:
			trace("default");
		}
	`, nil, nil)
	require.Equal(t, []string{`"2"`, `"3"`}, host.lines)
}

func TestSwitchDefaultRunsOnlyWhenNoCaseMatches(t *testing.T) {
	_, host := run(t, `
		auto x = 99;
		switch (x) {
		case 1:
			trace("1");
			break;
		default:
			trace("default");
		}
	`, nil, nil)
	require.Equal(t, []string{`"default"`}, host.lines)
}

func TestForeachArrayBindsIndexAndElement(t *testing.T) {
	_, host := run(t, `
		foreach (auto k, v : [] {10, 20, 30}) {
			trace(k, v);
		}
	`, nil, nil)
	require.Equal(t, []string{"0 10", "1 20", "2 30"}, host.lines)
}

func TestForeachStructBindsKeyAndValueInInsertionOrder(t *testing.T) {
	_, host := run(t, `
		foreach (auto k, v : struct {.z = 1, .a = 2}) {
			trace(k, v);
		}
	`, nil, nil)
	require.Equal(t, []string{`"z" 1`, `"a" 2`}, host.lines)
}

func TestRequireForwardsArgumentsAsArgv(t *testing.T) {
	_, host := run(t, `require("other.oyc", "hello", "world");`, nil, map[string]string{
		"other.oyc": `trace(argv[0], argv[1], sizeof(argv));`,
	})
	require.Equal(t, []string{`"hello" "world" 2`}, host.lines)
}

func TestTypeofReturnsVoidForAbsentStructKey(t *testing.T) {
	_, host := run(t, `
		auto s = struct {};
		trace(typeof(s.missing));
	`, nil, nil)
	require.Equal(t, []string{`"void"`}, host.lines)
}
