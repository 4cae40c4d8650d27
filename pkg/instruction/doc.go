// Package instruction defines the instruction streams exchanged between the
// pipeline stages.
//
// Proto instructions are produced by the tokenizer and carry names only.
// Instructions are produced by the transformer and carry resolved catalog
// types. Both are comparable values: two instructions are equal when their
// kind and fields are equal, which golden tests rely on.
package instruction

//go:generate go tool stringer -type=ProtoKind,Kind -output=kind_string.go

// LanguageNamespace is the namespace of directive attributes such as x:Key.
const LanguageNamespace = "http://schemas.microsoft.com/winfx/2006/xaml"

// Directive names with dedicated handling.
const (
	DirectiveKey            = "Key"
	DirectiveName           = "Name"
	DirectiveInitialization = "Initialization"
)
