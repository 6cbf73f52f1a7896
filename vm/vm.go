package vm

import (
	"fmt"

	e "github.com/loxvm/clox/errors"
	"github.com/sirupsen/logrus"
)

// stackMax is the fixed value-stack capacity. The language subset this
// VM runs (no functions, no recursion) never needs more.
const stackMax = 256

// VM is a stack machine that interprets one Chunk at a time. Its
// globals table and string intern table outlive any single Chunk: both
// persist across successive Interpret calls, as they must for a REPL
// where `var x = 1;` on one line has to be visible to `print x;` on the
// next.
type VM struct {
	chunk *Chunk
	ip    int

	stack [stackMax]Value
	top   int

	globals table
	strings *internTable
	// objects is the registry of every heap object this VM has ever
	// allocated, so FreeObjects can drop them all at once on teardown.
	objects []*ObjString
}

func NewVM() *VM {
	return &VM{
		globals: newTable(),
		strings: newInternTable(),
	}
}

// FreeObjects drops the VM's hold on every heap object it has
// allocated. Go's GC reclaims the memory; this exists to preserve the
// lifecycle contract (objects are owned by the VM and released en
// masse at teardown), not because Go needs a manual free.
func (vm *VM) FreeObjects() { vm.objects = nil }

func (vm *VM) push(val Value) {
	vm.stack[vm.top] = val
	vm.top++
}

func (vm *VM) pop() (last Value) {
	vm.top--
	return vm.stack[vm.top]
}

// peek looks distance slots down from the top of the stack without
// popping: 0 is the top, 1 is just below it, and so on.
func (vm *VM) peek(distance int) Value { return vm.stack[vm.top-1-distance] }

func (vm *VM) resetStack() { vm.top = 0 }

// Interpret compiles src into a fresh Chunk and runs it to completion.
// A non-nil error is either a compile-time diagnostic aggregate or a
// *errors.RuntimeError; callers distinguish the two with errors.As.
func (vm *VM) Interpret(src string) error {
	parser := NewParser(vm)
	chunk, err := parser.Compile(vm, src)
	if err != nil {
		return err
	}
	vm.chunk = chunk
	vm.ip = 0
	return vm.run()
}

func (vm *VM) run() error {
	readByte := func() (res byte) {
		res = vm.chunk.code[vm.ip]
		vm.ip++
		return
	}

	isNumber := func(v Value) bool { _, ok := v.(VNum); return ok }

	runtimeErr := func(line int, format string, a ...any) error {
		vm.resetStack()
		return &e.RuntimeError{Line: line, Reason: fmt.Sprintf(format, a...)}
	}

	for {
		logrus.Debugln(vm.stackTrace())
		oldIP := vm.ip
		if logrus.GetLevel() >= logrus.DebugLevel {
			instDump, _ := vm.chunk.DisassembleInst(oldIP)
			logrus.Debugln(instDump)
		}
		line := vm.chunk.lines[oldIP]

		switch inst := OpCode(readByte()); inst {
		case OpConst:
			vm.push(vm.chunk.consts[readByte()])

		case OpNil:
			vm.push(VNil{})
		case OpTrue:
			vm.push(VBool(true))
		case OpFalse:
			vm.push(VBool(false))

		case OpPop:
			vm.pop()

		case OpDefGlobal:
			name := vm.chunk.consts[readByte()].(VObj).Obj
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case OpGetGlobal:
			name := vm.chunk.consts[readByte()].(VObj).Obj
			val, ok := vm.globals.Get(name)
			if !ok {
				return runtimeErr(line, "Undefined variable '%s'.", name.chars)
			}
			vm.push(val)

		case OpSetGlobal:
			name := vm.chunk.consts[readByte()].(VObj).Obj
			if _, ok := vm.globals.Get(name); !ok {
				return runtimeErr(line, "Undefined variable '%s'.", name.chars)
			}
			// Assignment is an expression: the value stays on the stack.
			vm.globals.Set(name, vm.peek(0))

		case OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(VEq(a, b))

		case OpGreater:
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be numbers.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VGreater(a, b)
			vm.push(res)

		case OpLess:
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be numbers.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VLess(a, b)
			vm.push(res)

		case OpAdd:
			if as, bs, ok := VStrings(vm.peek(1), vm.peek(0)); ok {
				vm.pop()
				vm.pop()
				vm.push(NewVStr(vm, as+bs))
				break
			}
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be two numbers or two strings.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VAdd(a, b)
			vm.push(res)

		case OpSub:
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be numbers.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VSub(a, b)
			vm.push(res)

		case OpMul:
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be numbers.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VMul(a, b)
			vm.push(res)

		case OpDiv:
			if !isNumber(vm.peek(0)) || !isNumber(vm.peek(1)) {
				return runtimeErr(line, "Operands must be numbers.")
			}
			b, a := vm.pop(), vm.pop()
			res, _ := VDiv(a, b)
			vm.push(res)

		case OpNot:
			vm.push(!VTruthy(vm.pop()))

		case OpNeg:
			if !isNumber(vm.peek(0)) {
				return runtimeErr(line, "Operand must be a number.")
			}
			res, _ := VNeg(vm.pop())
			vm.push(res)

		case OpPrint:
			fmt.Printf("%s\n", vm.pop())

		case OpReturn:
			return nil

		default:
			return runtimeErr(line, "unknown instruction '%d'", inst)
		}
	}
}

func (vm *VM) stackTrace() string {
	res := "          "
	for i := 0; i < vm.top; i++ {
		res += fmt.Sprintf("[ %s ]", vm.stack[i])
	}
	return res
}
