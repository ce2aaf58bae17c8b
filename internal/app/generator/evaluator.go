// Package generator evaluates the function sources stored on a blueprint to
// produce one concrete input/solution pair per started challenge.
//
// Generator sources are executable code. They are trusted solely because
// blueprints are authored by operators and seeded out of band; the evaluator
// is NOT safe to expose to untrusted blueprint authors. The interpreter runs
// with no host bindings beyond the ECMAScript builtins and is interrupted
// after a wall-clock limit, but that bounds runtime, not trust.
package generator

import (
	"fmt"
	"time"

	"overmind/internal/common"

	"github.com/dop251/goja"
)

type Evaluator struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Evaluator {
	return &Evaluator{timeout: timeout}
}

// Evaluate runs the nullary input generator, then the unary solution
// generator on the produced input value. Both sources must compile before
// anything executes, so a broken solution generator cannot leave a
// half-generated challenge behind.
func (e *Evaluator) Evaluate(inputSrc, solutionSrc string) (input, solution interface{}, err error) {
	inputProg, err := compile("input-generator", inputSrc)
	if err != nil {
		return nil, nil, err
	}
	solutionProg, err := compile("solution-generator", solutionSrc)
	if err != nil {
		return nil, nil, err
	}

	vm := goja.New()
	stop := e.watchdog(vm)
	defer stop()

	inputFn, err := loadFunction(vm, inputProg)
	if err != nil {
		return nil, nil, err
	}
	solutionFn, err := loadFunction(vm, solutionProg)
	if err != nil {
		return nil, nil, err
	}

	inputVal, err := inputFn(goja.Undefined())
	if err != nil {
		return nil, nil, fmt.Errorf("input generator: %v: %w", err, common.ErrGeneratorExecution)
	}

	solutionVal, err := solutionFn(goja.Undefined(), inputVal)
	if err != nil {
		return nil, nil, fmt.Errorf("solution generator: %v: %w", err, common.ErrGeneratorExecution)
	}

	return inputVal.Export(), solutionVal.Export(), nil
}

// EvaluateSolution re-runs a solution generator on a fixed input value.
// Solution generators are pure given their input, so this reproduces the
// stored solution deterministically.
func (e *Evaluator) EvaluateSolution(solutionSrc string, input interface{}) (interface{}, error) {
	prog, err := compile("solution-generator", solutionSrc)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	stop := e.watchdog(vm)
	defer stop()

	fn, err := loadFunction(vm, prog)
	if err != nil {
		return nil, err
	}

	val, err := fn(goja.Undefined(), vm.ToValue(input))
	if err != nil {
		return nil, fmt.Errorf("solution generator: %v: %w", err, common.ErrGeneratorExecution)
	}
	return val.Export(), nil
}

func (e *Evaluator) watchdog(vm *goja.Runtime) func() {
	if e.timeout <= 0 {
		return func() {}
	}
	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt("generator timed out")
	})
	return func() { timer.Stop() }
}

// compile parenthesizes the stored source so a bare function expression
// evaluates to a value, mirroring how the sources were serialized.
func compile(name, src string) (*goja.Program, error) {
	prog, err := goja.Compile(name, "("+src+")", false)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, common.ErrGeneratorSyntax)
	}
	return prog, nil
}

func loadFunction(vm *goja.Runtime, prog *goja.Program) (goja.Callable, error) {
	val, err := vm.RunProgram(prog)
	if err != nil {
		return nil, fmt.Errorf("loading generator: %v: %w", err, common.ErrGeneratorExecution)
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("generator source does not evaluate to a function: %w", common.ErrGeneratorSyntax)
	}
	return fn, nil
}
