package csg

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps one of them.
var (
	// ErrStructural reports a mutation that would break the tree invariants.
	ErrStructural = errors.New("structural error")
	// ErrParameter reports an invalid node parameter.
	ErrParameter = errors.New("invalid parameter")
	// ErrUnimplemented reports a node kind without the requested capability.
	ErrUnimplemented = errors.New("not implemented")
)

// TreeError describes a failed operation on a node. The tree is left
// unchanged by the operation that returned it.
type TreeError struct {
	Op   string // operation, e.g. "add child"
	Node Node   // node the operation was applied to, may be nil
	Err  error  // wraps one of the error kinds
}

func (e *TreeError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("csg: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("csg: %s %s: %v", e.Op, e.Node.Kind(), e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

func newError(op string, n Node, kind error, format string, args ...any) error {
	return &TreeError{
		Op:   op,
		Node: n,
		Err:  fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}
