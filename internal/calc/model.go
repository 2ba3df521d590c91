// Package calc implements the calculator itself: evaluating an operator code
// over two operands, recording every computation against the caller's
// session (and user, once authenticated), and serving history.
package calc

import (
	"math"
	"time"
)

// Operator codes accepted by the compute endpoint.
const (
	OpAdd      = 1
	OpSubtract = 2
	OpMultiply = 3
	OpDivide   = 4
)

// Calculation represents one recorded computation. Result is nil when the
// operator code was unrecognized or the division was by zero.
type Calculation struct {
	ID         int64     `json:"id"`
	Num1       float64   `json:"num1"`
	Num2       float64   `json:"num2"`
	OperatorID int       `json:"operator_id"`
	Result     *float64  `json:"result"`
	SessionID  int64     `json:"session_id"`
	UserID     *int64    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ComputeRequest is the body of the compute call.
type ComputeRequest struct {
	Num1       float64 `json:"num1"`
	Num2       float64 `json:"num2"`
	OperatorID int     `json:"operator_id"`
}

// ComputeResponse echoes the operands and adds the result (null when the
// operator was unrecognized or the division undefined).
type ComputeResponse struct {
	Num1       float64  `json:"num1"`
	Num2       float64  `json:"num2"`
	OperatorID int      `json:"operator_id"`
	Result     *float64 `json:"result"`
}

// Evaluate applies an operator code to two IEEE doubles. Results are rounded
// to two decimal places. It returns nil -- not an error -- for an
// unrecognized code, and also for division by zero: JSON cannot carry
// Inf/NaN, so an undefined quotient is reported as a null result.
func Evaluate(num1, num2 float64, operatorID int) *float64 {
	var result float64

	switch operatorID {
	case OpAdd:
		result = num1 + num2
	case OpSubtract:
		result = num1 - num2
	case OpMultiply:
		result = num1 * num2
	case OpDivide:
		if num2 == 0 {
			return nil
		}
		result = num1 / num2
	default:
		return nil
	}

	result = math.Round(result*100) / 100
	return &result
}
