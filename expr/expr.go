package expr

import "github.com/benjamin-larsen/bincodec/document"

// Expr is a compiled length_field/condition expression. It is immutable
// and safe to evaluate repeatedly and concurrently once compiled.
type Expr struct {
	src  string
	root node
}

// Compile parses src against the expression grammar documented on parser.
func Compile(src string) (*Expr, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// Eval evaluates the expression against scopes, innermost document node
// first. It is stateless and side-effect free contract.
func (e *Expr) Eval(scopes document.Scopes) (Value, error) {
	return e.root.eval(e.src, scopes)
}

// EvalInt evaluates e and requires an integer-shaped result, as
// length_field expressions must produce.
func (e *Expr) EvalInt(scopes document.Scopes) (int64, error) {
	v, err := e.Eval(scopes)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, newErr(TypeMismatch, e.src, "expected an integer result")
	}
	return i, nil
}

// EvalBool evaluates e and coerces the result to boolean, as condition
// expressions require.
func (e *Expr) EvalBool(scopes document.Scopes) (bool, error) {
	v, err := e.Eval(scopes)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}
