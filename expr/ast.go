package expr

import "github.com/benjamin-larsen/bincodec/document"

// node is the AST for a compiled expression. Expr compiles once at schema
// parse time and is evaluated many times against different document
// contexts, so the tree holds no mutable state.
type node interface {
	eval(src string, scopes document.Scopes) (Value, error)
}

type literalNode struct{ v Value }

func (n literalNode) eval(string, document.Scopes) (Value, error) { return n.v, nil }

type pathNode struct {
	raw  string
	path document.Path
}

func (n pathNode) eval(src string, scopes document.Scopes) (Value, error) {
	v, ok := scopes.Resolve(n.path)
	if !ok {
		return Value{}, newErr(UnknownField, src, "unknown field "+n.raw)
	}
	return toValue(src, v)
}

func toValue(src string, v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return boolValue(x), nil
	case int:
		return intValue(int64(x)), nil
	case int8:
		return intValue(int64(x)), nil
	case int16:
		return intValue(int64(x)), nil
	case int32:
		return intValue(int64(x)), nil
	case int64:
		return intValue(x), nil
	case uint:
		return intValue(int64(x)), nil
	case uint8:
		return intValue(int64(x)), nil
	case uint16:
		return intValue(int64(x)), nil
	case uint32:
		return intValue(int64(x)), nil
	case uint64:
		return intValue(int64(x)), nil
	case float32:
		return floatValue(float64(x)), nil
	case float64:
		if x == float64(int64(x)) {
			return floatValue(x), nil
		}
		return floatValue(x), nil
	default:
		return Value{}, newErr(TypeMismatch, src, "field value is not numeric or boolean")
	}
}

type unaryNode struct {
	op    string
	inner node
}

func (n unaryNode) eval(src string, scopes document.Scopes) (Value, error) {
	v, err := n.inner.eval(src, scopes)
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case "!":
		return boolValue(!v.Truthy()), nil
	case "-":
		if v.isFloat() {
			return floatValue(-v.AsFloat()), nil
		}
		i, _ := v.AsInt()
		return intValue(-i), nil
	case "+":
		return v, nil
	default:
		return Value{}, newErr(Syntax, src, "unknown unary operator "+n.op)
	}
}

type binaryNode struct {
	op          string
	left, right node
}

func (n binaryNode) eval(src string, scopes document.Scopes) (Value, error) {
	switch n.op {
	case "&&":
		l, err := n.left.eval(src, scopes)
		if err != nil {
			return Value{}, err
		}
		if !l.Truthy() {
			return boolValue(false), nil
		}
		r, err := n.right.eval(src, scopes)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.Truthy()), nil
	case "||":
		l, err := n.left.eval(src, scopes)
		if err != nil {
			return Value{}, err
		}
		if l.Truthy() {
			return boolValue(true), nil
		}
		r, err := n.right.eval(src, scopes)
		if err != nil {
			return Value{}, err
		}
		return boolValue(r.Truthy()), nil
	}

	l, err := n.left.eval(src, scopes)
	if err != nil {
		return Value{}, err
	}
	r, err := n.right.eval(src, scopes)
	if err != nil {
		return Value{}, err
	}

	switch n.op {
	case "==":
		return boolValue(valuesEqual(l, r)), nil
	case "!=":
		return boolValue(!valuesEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareValues(src, n.op, l, r)
	case "+", "-", "*", "/", "%":
		return arith(src, n.op, l, r)
	default:
		return Value{}, newErr(Syntax, src, "unknown binary operator "+n.op)
	}
}

func valuesEqual(l, r Value) bool {
	if l.Kind == KindBool || r.Kind == KindBool {
		return l.Truthy() == r.Truthy()
	}
	return l.AsFloat() == r.AsFloat()
}

func compareValues(src, op string, l, r Value) (Value, error) {
	a, b := l.AsFloat(), r.AsFloat()
	switch op {
	case "<":
		return boolValue(a < b), nil
	case "<=":
		return boolValue(a <= b), nil
	case ">":
		return boolValue(a > b), nil
	case ">=":
		return boolValue(a >= b), nil
	default:
		return Value{}, newErr(Syntax, src, "unknown comparison operator "+op)
	}
}

func arith(src, op string, l, r Value) (Value, error) {
	useFloat := l.isFloat() || r.isFloat()

	if op == "/" || op == "%" {
		if !useFloat {
			ri, _ := r.AsInt()
			if ri == 0 {
				return Value{}, newErr(DivByZero, src, "division by zero")
			}
		} else if r.AsFloat() == 0 {
			return Value{}, newErr(DivByZero, src, "division by zero")
		}
	}

	if useFloat {
		a, b := l.AsFloat(), r.AsFloat()
		switch op {
		case "+":
			return floatValue(a + b), nil
		case "-":
			return floatValue(a - b), nil
		case "*":
			return floatValue(a * b), nil
		case "/":
			return floatValue(a / b), nil
		case "%":
			return Value{}, newErr(TypeMismatch, src, "'%' requires integer operands")
		}
	}

	a, _ := l.AsInt()
	b, _ := r.AsInt()
	switch op {
	case "+":
		return intValue(a + b), nil
	case "-":
		return intValue(a - b), nil
	case "*":
		return intValue(a * b), nil
	case "/":
		return intValue(a / b), nil
	case "%":
		return intValue(a % b), nil
	default:
		return Value{}, newErr(Syntax, src, "unknown arithmetic operator "+op)
	}
}
