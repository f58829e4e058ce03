package prefs

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError captures rule-engine metadata alongside the originating
// error.
type EvaluationError struct {
	Engine string
	Expr   string
	Key    string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: %s rule %s key=%s: %v", e.Engine, describeExpression(e.Expr), e.Key, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "prefs:") {
		return err
	}
	return fmt.Errorf("prefs: %s rule engine: %w", engine, err)
}

func wrapEvaluationError(engine, expr, key string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Key == "" {
			evalErr.Key = key
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Key:    key,
		Err:    err,
	}
}
