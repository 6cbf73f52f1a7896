package debug

import (
	"fmt"
	"os"
)

// DEBUG gates the compiler's chunk-disassembly trace and the assertions
// below. It is off by default and flipped on by setting CLOX_DEBUG to a
// non-empty value. The disassembly is logged at logrus debug level, so it
// also needs debug verbosity; the VM's per-instruction trace is gated by
// the logging level alone.
var DEBUG = os.Getenv("CLOX_DEBUG") != ""

func Assertf(b bool, format string, a ...any) {
	if DEBUG && !b {
		panic(fmt.Sprintf(format, a...))
	}
}

func AssertEq[T comparable](expected, got T) { Assertf(expected == got, "%v != %v", expected, got) }
