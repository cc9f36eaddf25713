package numtower

import "fmt"

// Implementation is a concrete binding for one operation. Operands are
// opaque: the tower never interprets them, only routes them. Binary
// operations receive operands in (a, b) order.
type Implementation func(operands ...any) (any, error)

// Derived implementations are built from the combinators below. Each
// combinator closes over already-bound implementations, so a derivation
// chain resolves to a plain Implementation with no lookup at call time.

// swapOperands derives a reflected binary operation from its forward form:
// r(a, b) = f(b, a).
func swapOperands(target Op, forward Implementation) Implementation {
	return func(operands ...any) (any, error) {
		if len(operands) != 2 {
			return nil, arityError(target, Binary, len(operands))
		}
		return forward(operands[1], operands[0])
	}
}

// logicalOr derives target(a, b) = f(a, b) or g(a, b). The first operand's
// result must be a bool so the disjunction can short-circuit; non-boolean
// results mean the concrete type should declare target directly.
func logicalOr(target Op, f, g Implementation) Implementation {
	return func(operands ...any) (any, error) {
		if len(operands) != 2 {
			return nil, arityError(target, Binary, len(operands))
		}
		left, err := f(operands...)
		if err != nil {
			return nil, err
		}
		b, ok := left.(bool)
		if !ok {
			return nil, resultError(target, left)
		}
		if b {
			return true, nil
		}
		return g(operands...)
	}
}

// logicalNot derives target(a, b) = not f(a, b).
func logicalNot(target Op, f Implementation) Implementation {
	return func(operands ...any) (any, error) {
		if len(operands) != 2 {
			return nil, arityError(target, Binary, len(operands))
		}
		result, err := f(operands...)
		if err != nil {
			return nil, err
		}
		b, ok := result.(bool)
		if !ok {
			return nil, resultError(target, result)
		}
		return !b, nil
	}
}

// negateThenAdd derives rsub(a, b) = add(neg(a), b).
func negateThenAdd(target Op, neg, add Implementation) Implementation {
	return func(operands ...any) (any, error) {
		if len(operands) != 2 {
			return nil, arityError(target, Binary, len(operands))
		}
		negated, err := neg(operands[0])
		if err != nil {
			return nil, err
		}
		return add(negated, operands[1])
	}
}

func arityError(target Op, want Arity, got int) error {
	return fmt.Errorf("operation %q: expected %d operands, got %d", target, want, got)
}

func resultError(target Op, got any) error {
	return fmt.Errorf("operation %q: derivation needs a boolean intermediate result, got %T", target, got)
}
