// Package testutil provides a float64-backed primitive set for exercising
// the tower in tests. It is the simplest possible concrete collaborator:
// every operation works on plain float64 operands and returns either a
// float64 or a bool.
package testutil

import (
	"fmt"
	"math"

	"github.com/mfield/numtower"
)

// Scalar returns a complete float64 primitive set covering every binary
// and unary operation a real-valued scalar supports.
//
// Conversions return complex128, float64 and int respectively; everything
// else returns float64 or bool. Reflected forms are implemented directly
// (not via swap) so tests can distinguish declared from derived bindings.
func Scalar() map[string]numtower.Implementation {
	return map[string]numtower.Implementation{
		"lt": comparison(func(a, b float64) bool { return a < b }),
		"le": comparison(func(a, b float64) bool { return a <= b }),
		"gt": comparison(func(a, b float64) bool { return a > b }),
		"ge": comparison(func(a, b float64) bool { return a >= b }),
		"eq": comparison(func(a, b float64) bool { return a == b }),
		"ne": comparison(func(a, b float64) bool { return a != b }),

		"add":      arithmetic(func(a, b float64) float64 { return a + b }),
		"radd":     arithmetic(func(a, b float64) float64 { return b + a }),
		"sub":      arithmetic(func(a, b float64) float64 { return a - b }),
		"rsub":     arithmetic(func(a, b float64) float64 { return b - a }),
		"mul":      arithmetic(func(a, b float64) float64 { return a * b }),
		"rmul":     arithmetic(func(a, b float64) float64 { return b * a }),
		"truediv":  arithmetic(func(a, b float64) float64 { return a / b }),
		"rtruediv": arithmetic(func(a, b float64) float64 { return b / a }),

		"pow":       arithmetic(math.Pow),
		"rpow":      arithmetic(func(a, b float64) float64 { return math.Pow(b, a) }),
		"floordiv":  arithmetic(func(a, b float64) float64 { return math.Floor(a / b) }),
		"rfloordiv": arithmetic(func(a, b float64) float64 { return math.Floor(b / a) }),
		"mod":       arithmetic(math.Mod),
		"rmod":      arithmetic(func(a, b float64) float64 { return math.Mod(b, a) }),

		"abs": unary(math.Abs),
		"pos": unary(func(a float64) float64 { return a }),
		"neg": unary(func(a float64) float64 { return -a }),

		"tocomplex": conversion(func(a float64) any { return complex(a, 0) }),
		"tofloat":   conversion(func(a float64) any { return a }),
		"toint":     conversion(func(a float64) any { return int(a) }),
		"round":     unary(math.Round),
	}
}

// Pick returns the named subset of Scalar. Unknown names panic: a typo in
// a test setup should fail loudly, not produce a silently smaller set.
func Pick(names ...string) map[string]numtower.Implementation {
	all := Scalar()
	out := make(map[string]numtower.Implementation, len(names))
	for _, name := range names {
		impl, ok := all[name]
		if !ok {
			panic(fmt.Sprintf("testutil: no scalar implementation for %q", name))
		}
		out[name] = impl
	}
	return out
}

func comparison(f func(a, b float64) bool) numtower.Implementation {
	return func(operands ...any) (any, error) {
		a, b, err := twoFloats(operands)
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func arithmetic(f func(a, b float64) float64) numtower.Implementation {
	return func(operands ...any) (any, error) {
		a, b, err := twoFloats(operands)
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

func unary(f func(a float64) float64) numtower.Implementation {
	return func(operands ...any) (any, error) {
		a, err := oneFloat(operands)
		if err != nil {
			return nil, err
		}
		return f(a), nil
	}
}

func conversion(f func(a float64) any) numtower.Implementation {
	return func(operands ...any) (any, error) {
		a, err := oneFloat(operands)
		if err != nil {
			return nil, err
		}
		return f(a), nil
	}
}

func twoFloats(operands []any) (float64, float64, error) {
	if len(operands) != 2 {
		return 0, 0, fmt.Errorf("expected 2 operands, got %d", len(operands))
	}
	a, ok := operands[0].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("operand 0: expected float64, got %T", operands[0])
	}
	b, ok := operands[1].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("operand 1: expected float64, got %T", operands[1])
	}
	return a, b, nil
}

func oneFloat(operands []any) (float64, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("expected 1 operand, got %d", len(operands))
	}
	a, ok := operands[0].(float64)
	if !ok {
		return 0, fmt.Errorf("operand 0: expected float64, got %T", operands[0])
	}
	return a, nil
}
