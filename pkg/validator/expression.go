/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a comparison operator in a constraint value.
type Operator string

const (
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpExact        Operator = ""
)

// two character operators first so ">=" is not read as ">".
var operators = []Operator{OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual, OpGreater, OpLess}

// ConstraintExpression is a parsed constraint value.
type ConstraintExpression struct {
	Operator Operator
	Value    string
}

// ParseConstraintExpression splits a leading operator from the operand.
// A value without an operator is an exact string match.
func ParseConstraintExpression(expr string) (*ConstraintExpression, error) {
	expr = strings.TrimSpace(expr)
	for _, op := range operators {
		if rest, ok := strings.CutPrefix(expr, string(op)); ok {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return nil, fmt.Errorf("operator %q has no operand", op)
			}
			return &ConstraintExpression{Operator: op, Value: rest}, nil
		}
	}
	return &ConstraintExpression{Operator: OpExact, Value: expr}, nil
}

// String renders the expression back to its source form.
func (e *ConstraintExpression) String() string {
	if e.Operator == OpExact {
		return e.Value
	}
	return string(e.Operator) + " " + e.Value
}

// Evaluate compares actual with the operand. Ordering operators need
// both sides numeric. Equality is numeric when both sides are numbers,
// so "16" equals "16.0", and exact string otherwise.
func (e *ConstraintExpression) Evaluate(actual string) (bool, error) {
	a, aErr := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	w, wErr := strconv.ParseFloat(e.Value, 64)
	numeric := aErr == nil && wErr == nil

	switch e.Operator {
	case OpExact:
		return actual == e.Value, nil
	case OpEqual:
		if numeric {
			return a == w, nil
		}
		return actual == e.Value, nil
	case OpNotEqual:
		if numeric {
			return a != w, nil
		}
		return actual != e.Value, nil
	}

	if wErr != nil {
		return false, fmt.Errorf("operand %q of %s is not a number", e.Value, e.Operator)
	}
	if aErr != nil {
		return false, fmt.Errorf("actual value %q is not a number", actual)
	}

	switch e.Operator {
	case OpGreaterEqual:
		return a >= w, nil
	case OpLessEqual:
		return a <= w, nil
	case OpGreater:
		return a > w, nil
	case OpLess:
		return a < w, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", e.Operator)
	}
}
