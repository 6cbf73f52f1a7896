package vm_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/loxvm/clox/vm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() { logrus.SetLevel(logrus.WarnLevel) }

// captureStdout redirects os.Stdout for the duration of f and returns
// everything written to it. The interpreter's only observable output
// is through `print`, so this is how these tests see program results.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	assert.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	assert.NoError(t, err)
	return string(out)
}

// assertProgram runs src against a fresh VM and checks its printed
// output and, if errSubstr is non-empty, that interpretation failed
// with an error containing it.
func assertProgram(t *testing.T, src, wantStdout, errSubstr string) {
	t.Helper()
	vm_ := vm.NewVM()
	var err error
	stdout := captureStdout(t, func() { err = vm_.Interpret(src) })

	if errSubstr == "" {
		assert.NoError(t, err)
	} else {
		assert.ErrorContains(t, err, errSubstr)
	}
	assert.Equal(t, wantStdout, stdout)
}

// assertLines runs each line against one shared VM in turn, so that
// declarations in an earlier line are visible to a later one — the
// same persistence a REPL session relies on.
func assertLines(t *testing.T, errSubstr string, lines ...string) string {
	t.Helper()
	vm_ := vm.NewVM()
	var out bytes.Buffer
	var err error
	for _, line := range lines {
		stdout := captureStdout(t, func() { err = vm_.Interpret(line) })
		out.WriteString(stdout)
		if err != nil {
			break
		}
	}
	if errSubstr == "" {
		assert.NoError(t, err)
	} else {
		assert.ErrorContains(t, err, errSubstr)
	}
	return out.String()
}

func TestArithmetic(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print 2 + 2;`, "4\n", "")
	assertProgram(t, `print 11.4 + 5.14 / 19198.10;`, "11.400267734827926\n", "")
	assertProgram(t, `print -6 * (-4 + -3) == 6 * 4 + 2 * ((((9))));`, "true\n", "")
	assertProgram(t, heredoc.Doc(`
		print 4/1 - 4/3 + 4/5 - 4/7 + 4/9 - 4/11
			+ 4/13 - 4/15 + 4/17 - 4/19 + 4/21 - 4/23;
	`), "3.058402765927333\n", "")
}

func TestComparisonAndLogicValues(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print 1 < 2;`, "true\n", "")
	assertProgram(t, `print 1 >= 2;`, "false\n", "")
	assertProgram(t, `print !nil;`, "true\n", "")
	assertProgram(t, `print !0;`, "false\n", "") // 0 is truthy: only nil/false are falsey.
	assertProgram(t, `print nil == false;`, "false\n", "")
}

func TestStrings(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print "hello" + " " + "world";`, "hello world\n", "")
	assertProgram(t, `print "a" == "a";`, "true\n", "")
	assertProgram(t, `print "a" == "b";`, "false\n", "")
}

func TestGlobalsAndBlocks(t *testing.T) {
	t.Parallel()
	out := assertLines(t, "",
		"var foo = 2;",
		"print foo;",
		"print foo + 3 == 1 + foo * foo;",
		"var bar;",
		"print bar;",
		"bar = foo = 2;",
		"print foo; print bar;",
		"{ foo = foo + 1; var shadowCheck = foo; print shadowCheck; }",
		"print foo;",
	)
	assert.Equal(t, "2\ntrue\nnil\n2\n2\n3\n3\n", out)
}

func TestUndefinedVariable(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print missing;`, "", "Undefined variable 'missing'.")
	assertProgram(t, `print missing;`, "", "[line 1] in script")
	assertProgram(t, `missing = 1;`, "", "Undefined variable 'missing'.")
}

func TestTypeMismatch(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print 1 + "a";`, "", "Operands must be two numbers or two strings.")
	assertProgram(t, `print "a" - 1;`, "", "Operands must be numbers.")
	assertProgram(t, `print -"a";`, "", "Operand must be a number.")
}

func TestInvalidAssignmentTarget(t *testing.T) {
	t.Parallel()
	assertProgram(t, `var a; var b; var c; var d; a * b = c + d;`, "", "Invalid assignment target.")
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	assertProgram(t, `print 1`, "", "Expect ';' after value.")
	assertProgram(t, `var;`, "", "Expect variable name.")
	assertProgram(t, `1 +;`, "", "Expect expression.")
	assertProgram(t, `"unterminated`, "", "Unterminated string.")
	assertProgram(t, "var x = 1;\n@", "", "Unexpected character.")
}

func TestPanicModeRecoversAtStatementBoundary(t *testing.T) {
	t.Parallel()
	// The first statement is malformed; compilation should still surface
	// the second statement's (independent) error rather than cascading.
	assertProgram(t, `print 1 +; var 2 = 3;`, "", "Expect expression.")
	assertProgram(t, `print 1 +; var 2 = 3;`, "", "Expect variable name.")
}
