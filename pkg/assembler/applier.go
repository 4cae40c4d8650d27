// Package assembler builds object graphs from instruction streams.
package assembler

import (
	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/catalog"
)

// ValueNode is one value produced for a member: a constructed object or
// raw text.
type ValueNode struct {
	Instance any
	// Key holds the x:Key of the value, when HasKey is set.
	Key    any
	HasKey bool
	// Source is the raw text a text value was read from.
	Source string
}

// MemberAssignment pairs a member with every value the document gave it,
// in document order.
type MemberAssignment struct {
	Member catalog.Member
	Values []ValueNode
}

// Applier executes member assignments.
type Applier struct {
	pipeline Pipeline
}

// NewApplier returns an Applier passing single values through p.
// A nil pipeline leaves values unchanged.
func NewApplier(p Pipeline) *Applier {
	return &Applier{pipeline: p}
}

// ExecuteAssignment applies the assignment to target.
//
// Collection members receive every value through their live collection,
// which is never replaced. Single-valued members require exactly one
// value; otherwise nothing is mutated.
func (a *Applier) ExecuteAssignment(assignment MemberAssignment, target any) error {
	member := assignment.Member
	if member == nil {
		return xamlerrors.NewAssignment(xamlerrors.ErrUnknownMember, "", "", nil, "assignment without a member")
	}
	if catalog.IsCollection(member) {
		return a.assignCollection(assignment, target)
	}
	return a.assignSingle(assignment, target)
}

func (a *Applier) assignCollection(assignment MemberAssignment, target any) error {
	member := assignment.Member
	if !member.CanGet() {
		return assignmentError(xamlerrors.ErrCollectionCapability, member, nil, "collection member has no getter")
	}
	collection, err := member.GetValue(target)
	if err != nil {
		return assignmentError(xamlerrors.ErrGetValue, member, err, "read collection")
	}
	if collection == nil {
		return assignmentError(xamlerrors.ErrNilCollection, member, nil, "collection is nil")
	}
	for _, node := range assignment.Values {
		if err := Add(collection, member.Collection(), node); err != nil {
			return assignmentError(errorCode(err), member, err, "add to %s collection", member.Collection())
		}
	}
	return nil
}

func (a *Applier) assignSingle(assignment MemberAssignment, target any) error {
	member := assignment.Member
	switch n := len(assignment.Values); {
	case n == 0:
		return assignmentError(xamlerrors.ErrMissingValue, member, nil, "member requires a value")
	case n > 1:
		return assignmentError(xamlerrors.ErrMultipleValues, member, nil, "cannot assign %d values to a single-valued member", n)
	}
	value := assignment.Values[0].Instance

	if a.pipeline != nil {
		res, err := a.pipeline.Handle(target, member, value)
		if err != nil {
			return assignmentError(xamlerrors.ErrValuePipeline, member, err, "value pipeline")
		}
		if res.IsHandled() {
			return nil
		}
		if v, ok := res.Replacement(); ok {
			value = v
		}
	}

	if !member.CanSet() {
		return assignmentError(xamlerrors.ErrSetValue, member, nil, "member is read-only")
	}
	if err := member.SetValue(target, value); err != nil {
		return assignmentError(xamlerrors.ErrSetValue, member, err, "set value")
	}
	return nil
}

// Add appends one value to a live collection according to kind.
func Add(collection any, kind catalog.CollectionKind, node ValueNode) error {
	switch kind {
	case catalog.List:
		list, ok := collection.(catalog.ListAppender)
		if !ok {
			return capabilityError(collection, "Append")
		}
		return list.Append(node.Instance)
	case catalog.Set:
		set, ok := collection.(catalog.SetAdder)
		if !ok {
			return capabilityError(collection, "Add")
		}
		return set.Add(node.Instance)
	case catalog.Keyed:
		dict, ok := collection.(catalog.KeyedInserter)
		if !ok {
			return capabilityError(collection, "Insert")
		}
		if !node.HasKey {
			return errMissingKey
		}
		return dict.Insert(node.Key, node.Instance)
	default:
		return capabilityError(collection, kind.String())
	}
}

func assignmentError(code xamlerrors.ErrorCode, member catalog.Member, cause error, format string, args ...any) *xamlerrors.AssignmentError {
	typeName := ""
	if owner := member.Owner(); owner != nil {
		typeName = owner.Name()
	}
	return xamlerrors.NewAssignment(code, typeName, member.Name(), cause, format, args...)
}
