// Package vm implements the Stack VM: the second of the engine's two
// interchangeable execution backends, executing a chunk.Chunk
// produced by the compiler (spec.md §4.7).
package vm

import (
	"fmt"

	"github.com/exprflow/exprflow/builtins"
	"github.com/exprflow/exprflow/chunk"
	"github.com/exprflow/exprflow/eval"
	"github.com/exprflow/exprflow/exprerr"
	"github.com/exprflow/exprflow/internal/invariant"
	"github.com/exprflow/exprflow/token"
	"github.com/exprflow/exprflow/value"
)

// stackMax is the VM's fixed stack capacity; overflow is fatal
// (spec.md §4.7, §5).
const stackMax = 256

// Result is one formula's outcome: its value and its original input
// index (so the caller can scatter results back into place).
type Result struct {
	Index int
	Value value.Value
}

// Environment is the host collaborator the VM reads from and writes
// to — identical contract to eval.Environment (spec.md §6).
type Environment interface {
	Get(name string) (value.Value, bool)
	Put(name string, v value.Value) bool
}

// VM executes a chunk.Chunk's instruction stream against an
// Environment. Each VM instance is a state machine owned by one
// thread of control for the duration of one Run call (spec.md §5).
type VM struct {
	stack    []value.Value
	builtins *builtins.Registry
}

// New returns a VM. registry may be nil, in which case
// builtins.NewRegistry's defaults are used.
func New(registry *builtins.Registry) *VM {
	if registry == nil {
		registry = builtins.NewRegistry()
	}
	return &VM{stack: make([]value.Value, 0, stackMax), builtins: registry}
}

// Run executes c against env, returning one Result per formula in
// execution order (the caller is responsible for scattering these
// back to input-aligned order — spec.md §4.9).
func (vm *VM) Run(c *chunk.Chunk, env Environment) ([]Result, error) {
	reader, err := chunk.NewReader(c)
	if err != nil {
		return nil, err
	}
	vm.stack = vm.stack[:0]

	var results []Result
	formulaIndex := 0

	for {
		op, err := reader.ReadOp()
		if err != nil {
			return nil, err
		}
		switch op {
		case chunk.OpBegin:
			idx, err := reader.ReadInt()
			if err != nil {
				return nil, err
			}
			formulaIndex = int(idx)

		case chunk.OpEnd:
			v, err := vm.pop()
			if err != nil {
				return nil, err
			}
			results = append(results, Result{Index: formulaIndex, Value: v})

		case chunk.OpConstant:
			v, err := vm.readConstant(reader)
			if err != nil {
				return nil, err
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case chunk.OpNull:
			if err := vm.push(value.NullValue); err != nil {
				return nil, err
			}

		case chunk.OpTrue:
			if err := vm.push(value.NewBool(true)); err != nil {
				return nil, err
			}

		case chunk.OpFalse:
			if err := vm.push(value.NewBool(false)); err != nil {
				return nil, err
			}

		case chunk.OpPop:
			if _, err := vm.pop(); err != nil {
				return nil, err
			}

		case chunk.OpGetGlobal:
			name, err := vm.readString(reader)
			if err != nil {
				return nil, err
			}
			v, ok := env.Get(name)
			if !ok {
				return nil, exprerr.NewRuntimeError(fmt.Sprintf("undefined variable: %s, formula: %d", name, formulaIndex))
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case chunk.OpSetGlobal:
			name, err := vm.readString(reader)
			if err != nil {
				return nil, err
			}
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			if !env.Put(name, v) {
				return nil, exprerr.NewRuntimeError(fmt.Sprintf("variable rejected: %s, formula: %d", name, formulaIndex))
			}

		case chunk.OpGetProperty:
			name, err := vm.readString(reader)
			if err != nil {
				return nil, err
			}
			obj, err := vm.pop()
			if err != nil {
				return nil, err
			}
			inst := obj.AsInstance()
			if inst == nil {
				return nil, exprerr.NewRuntimeError(fmt.Sprintf("only instances have properties: %s, formula: %d", name, formulaIndex))
			}
			v, ok := inst.Get(name)
			if !ok {
				return nil, exprerr.NewRuntimeError(fmt.Sprintf("undefined property: %s, formula: %d", name, formulaIndex))
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case chunk.OpSetProperty:
			name, err := vm.readString(reader)
			if err != nil {
				return nil, err
			}
			obj, err := vm.pop()
			if err != nil {
				return nil, err
			}
			inst := obj.AsInstance()
			if inst == nil {
				return nil, exprerr.NewRuntimeError(fmt.Sprintf("only instances have fields: %s, formula: %d", name, formulaIndex))
			}
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			// Mutating through the popped receiver is observable
			// elsewhere because Instance is reference-typed — see
			// DESIGN.md, Open Question 2.
			inst.Set(name, v)

		case chunk.OpAdd, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide, chunk.OpMode, chunk.OpPower,
			chunk.OpGreater, chunk.OpGreaterEqual, chunk.OpLess, chunk.OpLessEqual,
			chunk.OpEqualEqual, chunk.OpBangEqual:
			if err := vm.binaryOp(op); err != nil {
				return nil, err
			}

		case chunk.OpNot, chunk.OpNegate:
			if err := vm.unaryOp(op); err != nil {
				return nil, err
			}

		case chunk.OpCall:
			name, err := vm.readString(reader)
			if err != nil {
				return nil, err
			}
			if err := vm.call(name); err != nil {
				return nil, err
			}

		case chunk.OpJumpIfFalse:
			offset, err := reader.ReadInt()
			if err != nil {
				return nil, err
			}
			v, err := vm.peek()
			if err != nil {
				return nil, err
			}
			if !v.Truthy() {
				reader.Seek(reader.Position() + int(offset))
			}

		case chunk.OpJump:
			offset, err := reader.ReadInt()
			if err != nil {
				return nil, err
			}
			reader.Seek(reader.Position() + int(offset))

		case chunk.OpReturn:
			// Reserved; this grammar never emits it (no user-defined
			// functions — spec.md §1 Non-goals).

		case chunk.OpExit:
			invariant.Postcondition(len(vm.stack) == 0, "VM stack not empty at Exit: %d values", len(vm.stack))
			return results, nil

		default:
			return nil, exprerr.NewRuntimeError(fmt.Sprintf("unknown opcode: %d, formula: %d", op, formulaIndex))
		}
	}
}

func (vm *VM) push(v value.Value) error {
	if len(vm.stack) >= stackMax {
		return exprerr.NewRuntimeError("stack overflow")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.NullValue, exprerr.NewRuntimeError("stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.NullValue, exprerr.NewRuntimeError("stack underflow")
	}
	return vm.stack[len(vm.stack)-1], nil
}

func (vm *VM) readConstant(r *chunk.Reader) (value.Value, error) {
	idx, err := r.ReadInt()
	if err != nil {
		return value.NullValue, err
	}
	return r.ReadConstant(int(idx))
}

func (vm *VM) readString(r *chunk.Reader) (string, error) {
	v, err := vm.readConstant(r)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

var binaryOpToken = map[chunk.OpCode]token.Type{
	chunk.OpAdd:          token.Plus,
	chunk.OpSubtract:     token.Minus,
	chunk.OpMultiply:     token.Star,
	chunk.OpDivide:       token.Slash,
	chunk.OpMode:         token.Percent,
	chunk.OpPower:        token.StarStar,
	chunk.OpGreater:      token.Greater,
	chunk.OpGreaterEqual: token.GreaterEqual,
	chunk.OpLess:         token.Less,
	chunk.OpLessEqual:    token.LessEqual,
	chunk.OpEqualEqual:   token.EqualEqual,
	chunk.OpBangEqual:    token.BangEqual,
}

func (vm *VM) binaryOp(op chunk.OpCode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	result, err := eval.Binary(a, b, binaryOpToken[op])
	if err != nil {
		return err
	}
	return vm.push(result)
}

func (vm *VM) unaryOp(op chunk.OpCode) error {
	operand, err := vm.pop()
	if err != nil {
		return err
	}
	var tt token.Type
	if op == chunk.OpNot {
		tt = token.Bang
	} else {
		tt = token.Minus
	}
	result, err := eval.Unary(operand, tt)
	if err != nil {
		return err
	}
	return vm.push(result)
}

func (vm *VM) call(name string) error {
	fn, ok := vm.builtins.Get(name)
	if !ok {
		return exprerr.NewRuntimeError("undefined function: " + name)
	}
	args := make([]value.Value, fn.Arity())
	for i := fn.Arity() - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}
	result, err := fn.Call(args)
	if err != nil {
		return err
	}
	return vm.push(result)
}
