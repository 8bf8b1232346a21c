package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr/file"
)

// ErrEmptyExpression is wrapped by the CompilationError returned for a blank expression.
var ErrEmptyExpression = errors.New("empty expression")

// CompilationError reports an expression that does not compile. Line and
// Column are 1-based and zero when expr gave no location.
type CompilationError struct {
	Expression string
	Line       int
	Column     int
	Message    string
	Err        error
}

func newCompilationError(expression string, err error) *CompilationError {
	cerr := &CompilationError{
		Expression: expression,
		Message:    err.Error(),
		Err:        err,
	}

	var ferr *file.Error
	if errors.As(err, &ferr) {
		cerr.Message = ferr.Message
		if ferr.Line > 0 {
			cerr.Line = ferr.Line
			cerr.Column = ferr.Column + 1
		}
	}
	return cerr
}

func (e *CompilationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("filter %q: %d:%d: %s", e.Expression, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("filter %q: %s", e.Expression, e.Message)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError reports a compiled filter that failed on one job, usually
// an operator applied to a field of the wrong type.
type EvaluationError struct {
	Job        string
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("job %s: filter %q: %v", e.Job, e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
