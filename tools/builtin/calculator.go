package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/voocel/copilot/tools"
)

// Operator is an arithmetic operator understood by the calculator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

var ErrDivisionByZero = errors.New("division by zero")

// CalculatorArgs are the named parameters of tool_calculator.
type CalculatorArgs struct {
	A        int      `json:"a"`
	B        int      `json:"b"`
	Operator Operator `json:"operator"`
}

const calculatorDescription = "A basic int calculator can do addition, subtraction, multiplication, and division. Useful for simple calculations."

// NewCalculator creates the integer calculator tool.
func NewCalculator() tools.Tool {
	return tools.MustFunctionTool("tool_calculator", calculatorDescription,
		func(ctx context.Context, args CalculatorArgs) (int, error) {
			return Calculate(args.A, args.B, args.Operator)
		})
}

// Calculate applies op to a and b. Division truncates toward zero.
func Calculate(a, b int, op Operator) (int, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("invalid operator %q", op)
	}
}
