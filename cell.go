package prefs

import (
	"context"
	"fmt"

	"github.com/goliatone/go-prefs/pkg/event"
)

func validateCell(store ValueStore, key string) error {
	if store == nil {
		return ErrNilStore
	}
	if key == "" {
		return ErrKeyRequired
	}
	return nil
}

// compileRuleConfig resolves the guard-rule engine and compiles the rule once
// at construction, so malformed expressions fail the constructor instead of
// every update.
func compileRuleConfig[T any](cfg cellConfig[T]) (CompiledRule, string, error) {
	if cfg.rule == "" {
		return nil, "", nil
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if cfg.cache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(cfg.cache))
		}
		if cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		evaluator = NewExprEvaluator(exprOpts...)
	}
	engine := engineName(evaluator)
	compiled, err := evaluator.Compile(cfg.rule)
	if err != nil {
		return nil, engine, err
	}
	return compiled, engine, nil
}

// checkRule runs the compiled guard against the pending transition. Rules must
// produce a boolean; false rejects the update, errors surface as evaluation
// failures. Either way no store write happens.
func checkRule(rule CompiledRule, engine, key, expr string, current, next any) error {
	if rule == nil {
		return nil
	}
	result, err := rule.Evaluate(RuleContext{Key: key, Current: current, Next: next})
	if err != nil {
		return wrapEvaluationError(engine, expr, key, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return wrapEvaluationError(engine, expr, key, fmt.Errorf("rule must evaluate to a boolean, got %T", result))
	}
	if !ok {
		return &RuleViolationError{Key: key, Expr: expr}
	}
	return nil
}

func updateLoggerOf[T any](cfg cellConfig[T]) UpdateLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopUpdateLogger{}
}

func notifyObservers[T any](cfg cellConfig[T], key string, value T) {
	for _, observer := range cfg.observers {
		if observer != nil {
			observer.CellChanged(key, value)
		}
	}
}

// emitChange fans the committed update out to the configured emitter. Hook
// failures never fail the update; they surface through the update logger.
func emitChange[T any](ctx context.Context, cfg cellConfig[T], key, kind, revision string, old, next any) {
	if cfg.emitter == nil || !cfg.emitter.Enabled() {
		return
	}
	err := cfg.emitter.Emit(ctx, event.BuildPrefUpdatedEvent(event.ChangeInput{
		Identity: cfg.identity,
		Key:      key,
		Kind:     kind,
		Revision: revision,
		OldValue: old,
		NewValue: next,
	}))
	if err != nil {
		updateLoggerOf(cfg).LogUpdate(UpdateLogEvent{
			Key:      key,
			Kind:     kind,
			Revision: revision,
			Err:      err,
		})
	}
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*prefs.exprEvaluator":
		return "expr"
	case "*prefs.celEvaluator":
		return "cel"
	case "*prefs.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
