package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	e "github.com/loxvm/clox/errors"
	"github.com/loxvm/clox/vm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

func App() (app *cobra.Command) {
	app = &cobra.Command{
		Use:   "clox",
		Short: "Run the clox bytecode interpreter",
	}

	app.Flags().SortFlags = true
	defaultVerbosityStr := "INFO"
	verbosity := app.Flags().StringP("verbosity", "v", defaultVerbosityStr, "Logging verbosity")

	app.Run = func(_ *cobra.Command, args []string) {
		verbosityLvl, err := logrus.ParseLevel(*verbosity)
		if err != nil {
			verbosityLvl, _ = logrus.ParseLevel(defaultVerbosityStr)
		}
		logrus.SetLevel(verbosityLvl)
		logrus.SetFormatter(&easy.Formatter{LogFormat: "//DBG// %msg%\n"})

		os.Exit(run(args))
	}
	return
}

// run dispatches on clox's positional arguments and returns the process
// exit code: 0 on success, 65 for a compile error, 70 for a runtime
// error, 64 for the wrong number of arguments, 74 if the script file
// couldn't be read.
func run(args []string) int {
	switch len(args) {
	case 0:
		return repl()
	case 1:
		return runFile(args[0])
	default:
		fmt.Fprintln(os.Stderr, "Usage: clox [path]")
		return 64
	}
}

// repl reads one line at a time via readline, sharing a single VM (and
// so a single globals table) across the whole session. A compile or
// runtime error is printed and the loop continues; only EOF or an
// interrupt ends it.
func repl() int {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 74
	}
	defer rl.Close()

	vm_ := vm.NewVM()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return 0
		}
		if ierr := vm_.Interpret(line + "\n"); ierr != nil {
			fmt.Fprintln(os.Stderr, ierr)
		}
	}
}

func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 74
	}

	vm_ := vm.NewVM()
	ierr := vm_.Interpret(string(src))
	switch {
	case ierr == nil:
		return 0
	case isRuntimeError(ierr):
		fmt.Fprintln(os.Stderr, ierr)
		return 70
	default:
		fmt.Fprintln(os.Stderr, ierr)
		return 65
	}
}

func isRuntimeError(err error) bool {
	var rerr *e.RuntimeError
	return errors.As(err, &rerr)
}
