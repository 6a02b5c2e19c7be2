package conditions

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Variables available to step condition expressions.
const (
	VarAmount        = "amount"
	VarTotalIncrease = "totalIncrease"
	VarEmployees     = "employees"
)

var ErrOutputType = errors.New("condition must evaluate to a boolean")

// Evaluator compiles CEL step conditions and caches the programs by expression.
type Evaluator struct {
	env      *cel.Env
	programs sync.Map
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(VarAmount, cel.DoubleType),
		cel.Variable(VarTotalIncrease, cel.DoubleType),
		cel.Variable(VarEmployees, cel.IntType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate reports whether expr holds for vars. An empty expression always holds.
// Missing variables default to zero.
func (e *Evaluator) Evaluate(expr string, vars map[string]interface{}) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}

	program, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(activation(vars))
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, ErrOutputType
	}
	return v, nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	if cached, ok := e.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, ErrOutputType
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	e.programs.Store(expr, program)
	return program, nil
}

func activation(vars map[string]interface{}) map[string]any {
	return map[string]any{
		VarAmount:        toFloat(vars[VarAmount]),
		VarTotalIncrease: toFloat(vars[VarTotalIncrease]),
		VarEmployees:     toInt(vars[VarEmployees]),
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case interface{ InexactFloat64() float64 }:
		return n.InexactFloat64()
	}
	return 0
}

func toInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
