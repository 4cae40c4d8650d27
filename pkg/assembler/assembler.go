package assembler

import (
	"errors"
	"fmt"
	"iter"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/instruction"
)

// Config configures an ObjectAssembler.
type Config struct {
	Catalog catalog.Catalog
	// Pipeline, when set, sees every value assigned to a single-valued member.
	Pipeline Pipeline
}

// ObjectAssembler turns an instruction stream into an object graph.
// It holds no per-document state and may be shared.
type ObjectAssembler struct {
	catalog catalog.Catalog
	applier *Applier
}

// New returns an ObjectAssembler for cfg.
func New(cfg Config) *ObjectAssembler {
	return &ObjectAssembler{catalog: cfg.Catalog, applier: NewApplier(cfg.Pipeline)}
}

// Assemble consumes seq and returns the root object.
// Any error, upstream or during assembly, aborts the load and no partial
// graph is returned. After an assembly error the rest of seq is drained
// without assembling, and an upstream error found there is joined in front
// of it.
func (a *ObjectAssembler) Assemble(seq iter.Seq2[instruction.Instruction, error]) (any, error) {
	b := &build{catalog: a.catalog, applier: a.applier, names: NewNameScope()}
	var failure error
	for in, err := range seq {
		if err != nil {
			if failure != nil {
				return nil, errors.Join(err, failure)
			}
			return nil, err
		}
		if failure != nil {
			continue
		}
		failure = b.apply(in)
	}
	if failure != nil {
		return nil, failure
	}
	return b.result()
}

type objectFrame struct {
	typ      catalog.Type
	instance any
	key      any
	member   *memberFrame
	assigned map[memberKey]struct{}
	name     string
	args     []string
	// pending holds member assignments made before the instance exists.
	pending []MemberAssignment
	created bool
	touched bool
	inArgs  bool
	hasKey  bool
}

type memberKey struct {
	owner     string
	namespace string
	name      string
	attached  bool
}

type memberFrame struct {
	member catalog.Member
	ref    instruction.MemberRef
	values []ValueNode
}

type build struct {
	catalog catalog.Catalog
	applier *Applier
	names   *NameScope
	root    any
	stack   []*objectFrame
	done    bool
}

func (b *build) top() *objectFrame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *build) apply(in instruction.Instruction) error {
	switch in.Kind {
	case instruction.KindNamespaceDeclaration:
		return nil
	case instruction.KindStartObject:
		return b.startObject(in)
	case instruction.KindMarkupExtensionArguments:
		f := b.top()
		if f == nil || f.created || f.touched || f.member != nil {
			return orderError("extension arguments must directly follow StartObject")
		}
		f.inArgs = true
		return nil
	case instruction.KindValue:
		return b.value(in.Value)
	case instruction.KindStartMember:
		return b.startMember(in.Member)
	case instruction.KindEndMember:
		return b.endMember()
	case instruction.KindEndObject:
		return b.endObject()
	default:
		return orderError("unexpected instruction %s", in)
	}
}

func (b *build) startObject(in instruction.Instruction) error {
	if in.Type == nil {
		return orderError("StartObject without a type")
	}
	if parent := b.top(); parent != nil {
		if parent.member == nil {
			return orderError("object %s outside a member of %s", in.Type.Name(), parent.typ.Name())
		}
	} else if b.done {
		return orderError("second root object %s", in.Type.Name())
	}
	b.stack = append(b.stack, &objectFrame{typ: in.Type})
	return nil
}

func (b *build) value(text string) error {
	f := b.top()
	switch {
	case f == nil:
		return orderError("value %q outside an object", text)
	case f.member != nil:
		f.member.values = append(f.member.values, ValueNode{Instance: text, Source: text})
		return nil
	case f.inArgs:
		f.args = append(f.args, text)
		return nil
	default:
		return orderError("value %q outside a member of %s", text, f.typ.Name())
	}
}

func (b *build) startMember(ref instruction.MemberRef) error {
	f := b.top()
	if f == nil {
		return orderError("member %s outside an object", ref)
	}
	if f.member != nil {
		return orderError("member %s opened inside member %s", ref, f.member.ref)
	}
	f.inArgs, f.touched = false, true
	mf := &memberFrame{ref: ref}
	if !ref.Directive {
		member, err := b.resolve(f, ref)
		if err != nil {
			return err
		}
		mf.member = member
	}
	f.member = mf
	return nil
}

func (b *build) resolve(f *objectFrame, ref instruction.MemberRef) (catalog.Member, error) {
	owner := ref.Owner
	if owner == nil {
		owner = f.typ
	}
	var (
		member catalog.Member
		ok     bool
	)
	if ref.Attached {
		member, ok = b.catalog.ResolveAttachableMember(owner, ref.Name)
	} else {
		member, ok = b.catalog.ResolveMember(owner, ref.Name)
	}
	if !ok {
		return nil, xamlerrors.NewAssignment(xamlerrors.ErrUnknownMember, owner.Name(), ref.Name, nil, "unknown member")
	}
	return member, nil
}

func (b *build) endMember() error {
	f := b.top()
	if f == nil || f.member == nil {
		return orderError("EndMember without an open member")
	}
	mf := f.member
	f.member = nil
	if mf.ref.Directive {
		return b.directive(f, mf)
	}
	if !catalog.IsCollection(mf.member) {
		if err := f.markAssigned(mf.member); err != nil {
			return err
		}
	}
	assignment := MemberAssignment{Member: mf.member, Values: mf.values}
	if !f.created {
		f.pending = append(f.pending, assignment)
		return nil
	}
	return b.applier.ExecuteAssignment(assignment, f.instance)
}

// markAssigned rejects a second assignment to a single-valued member of the
// same object.
func (f *objectFrame) markAssigned(m catalog.Member) error {
	key := memberKey{name: m.Name(), attached: m.Attachable()}
	if owner := m.Owner(); owner != nil {
		key.owner, key.namespace = owner.Name(), owner.Namespace()
	}
	if _, ok := f.assigned[key]; ok {
		return xamlerrors.NewAssignment(xamlerrors.ErrMultipleValues, f.typ.Name(), m.Name(), nil, "member is already set")
	}
	if f.assigned == nil {
		f.assigned = make(map[memberKey]struct{})
	}
	f.assigned[key] = struct{}{}
	return nil
}

// flush applies the assignments held while the instance did not exist, in
// document order.
func (b *build) flush(f *objectFrame) error {
	pending := f.pending
	f.pending = nil
	for _, assignment := range pending {
		if err := b.applier.ExecuteAssignment(assignment, f.instance); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) directive(f *objectFrame, mf *memberFrame) error {
	name := mf.ref.Name
	switch name {
	case instruction.DirectiveKey, instruction.DirectiveName, instruction.DirectiveInitialization:
	default:
		return nil
	}
	switch len(mf.values) {
	case 0:
		return xamlerrors.NewAssignment(xamlerrors.ErrMissingValue, f.typ.Name(), "x:"+name, nil, "directive requires a value")
	case 1:
	default:
		return xamlerrors.NewAssignment(xamlerrors.ErrMultipleValues, f.typ.Name(), "x:"+name, nil, "directive takes a single value")
	}
	v := mf.values[0]

	switch name {
	case instruction.DirectiveKey:
		f.key, f.hasKey = v.Instance, true
	case instruction.DirectiveName:
		s, ok := v.Instance.(string)
		if !ok {
			return xamlerrors.NewAssignment(xamlerrors.ErrSetValue, f.typ.Name(), "x:Name", nil, "name must be text, got %T", v.Instance)
		}
		f.name = s
	case instruction.DirectiveInitialization:
		return b.initialize(f, v)
	}
	return nil
}

func (b *build) initialize(f *objectFrame, v ValueNode) error {
	if f.created {
		return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "x:Initialization", nil, "initialization text after the instance was created")
	}
	text, ok := v.Instance.(string)
	if !ok {
		return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "x:Initialization", nil, "initialization value must be text, got %T", v.Instance)
	}
	tc, ok := f.typ.(catalog.TextConstructor)
	if !ok {
		return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "", nil, "type cannot be created from text %q", text)
	}
	instance, err := tc.FromText(text)
	if err != nil {
		return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "", err, "create from text %q", text)
	}
	f.instance, f.created = instance, true
	return b.flush(f)
}

// create instantiates the object of f once, from its positional arguments
// when it has any.
func (b *build) create(f *objectFrame) error {
	if f.created {
		return nil
	}
	var (
		instance any
		err      error
	)
	if len(f.args) > 0 {
		ac, ok := f.typ.(catalog.ArgumentConstructor)
		if !ok {
			return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "", nil, "type does not accept %d positional arguments", len(f.args))
		}
		instance, err = ac.NewWithArguments(f.args)
	} else {
		instance, err = f.typ.New()
	}
	if err != nil {
		return xamlerrors.NewAssignment(xamlerrors.ErrConstruct, f.typ.Name(), "", err, "create instance")
	}
	f.instance, f.created, f.inArgs = instance, true, false
	return nil
}

func (b *build) endObject() error {
	f := b.top()
	if f == nil {
		return orderError("EndObject without an open object")
	}
	if f.member != nil {
		return orderError("EndObject inside open member %s", f.member.ref)
	}
	if err := b.create(f); err != nil {
		return err
	}
	if err := b.flush(f); err != nil {
		return err
	}
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.top()

	value := f.instance
	if ext, ok := value.(MarkupExtension); ok {
		ctx := ExtensionContext{names: b.names}
		if parent != nil && !parent.member.ref.Directive {
			ctx.Target = parent.instance
			ctx.Member = parent.member.member
		}
		provided, err := ext.ProvideValue(ctx)
		if err != nil {
			return xamlerrors.NewAssignment(xamlerrors.ErrProvideValue, f.typ.Name(), "", err, "provide value")
		}
		value = provided
	}
	if f.name != "" {
		if err := b.names.Register(f.name, value); err != nil {
			return err
		}
	}

	if parent == nil {
		b.root, b.done = value, true
		return nil
	}
	parent.member.values = append(parent.member.values, ValueNode{Instance: value, Key: f.key, HasKey: f.hasKey})
	return nil
}

func (b *build) result() (any, error) {
	if f := b.top(); f != nil {
		return nil, orderError("input ended inside %s", f.typ.Name())
	}
	if !b.done {
		return nil, orderError("input has no root object")
	}
	return b.root, nil
}

func orderError(format string, args ...any) error {
	return xamlerrors.NewAssignment(xamlerrors.ErrInstructionOrder, "", "", nil, "%s", fmt.Sprintf(format, args...))
}
