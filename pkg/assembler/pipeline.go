package assembler

import "github.com/jacoelho/xaml/pkg/catalog"

type resultKind uint8

const (
	resultUnhandled resultKind = iota
	resultReplaced
	resultHandled
)

// PipelineResult is the outcome of one value pipeline pass.
// The zero value is Unhandled.
type PipelineResult struct {
	value any
	kind  resultKind
}

// Unhandled leaves the value and the assignment unchanged.
func Unhandled() PipelineResult {
	return PipelineResult{}
}

// Replaced substitutes v for the value before it is assigned.
func Replaced(v any) PipelineResult {
	return PipelineResult{kind: resultReplaced, value: v}
}

// Handled reports that the stage performed the assignment itself; the
// member setter is not called.
func Handled() PipelineResult {
	return PipelineResult{kind: resultHandled}
}

// IsHandled reports whether the setter must be skipped.
func (r PipelineResult) IsHandled() bool {
	return r.kind == resultHandled
}

// Replacement returns the substituted value, if any.
func (r PipelineResult) Replacement() (any, bool) {
	return r.value, r.kind == resultReplaced
}

// Pipeline inspects a value before it is assigned to a single-valued member.
type Pipeline interface {
	Handle(parent any, member catalog.Member, value any) (PipelineResult, error)
}

// PipelineFunc adapts a function to Pipeline.
type PipelineFunc func(parent any, member catalog.Member, value any) (PipelineResult, error)

// Handle calls f.
func (f PipelineFunc) Handle(parent any, member catalog.Member, value any) (PipelineResult, error) {
	return f(parent, member, value)
}

// Chain runs stages in order. Each stage sees the value produced by the
// previous one; the first Handled result ends the chain.
type Chain []Pipeline

// Handle implements Pipeline.
func (c Chain) Handle(parent any, member catalog.Member, value any) (PipelineResult, error) {
	replaced := false
	for _, stage := range c {
		if stage == nil {
			continue
		}
		res, err := stage.Handle(parent, member, value)
		if err != nil {
			return Unhandled(), err
		}
		if res.IsHandled() {
			return res, nil
		}
		if v, ok := res.Replacement(); ok {
			value = v
			replaced = true
		}
	}
	if replaced {
		return Replaced(value), nil
	}
	return Unhandled(), nil
}
