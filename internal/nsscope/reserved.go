package nsscope

import "fmt"

const (
	// XMLPrefix is the reserved prefix for the XML namespace.
	XMLPrefix = "xml"
	// XMLNSPrefix is the reserved prefix for namespace declarations.
	XMLNSPrefix = "xmlns"
	// XMLNSNamespace is the namespace of namespace declarations.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// ValidateDecl verifies that a declaration leaves the reserved prefixes and
// namespaces alone. Binding xml to its own namespace is allowed.
func ValidateDecl(d Decl) error {
	switch {
	case d.Prefix == XMLNSPrefix:
		return fmt.Errorf("prefix %s cannot be declared", XMLNSPrefix)
	case d.Prefix == XMLPrefix:
		if d.Namespace != XMLNamespace {
			return fmt.Errorf("prefix %s must be bound to %s", XMLPrefix, XMLNamespace)
		}
		return nil
	case d.Namespace == XMLNamespace:
		return fmt.Errorf("namespace %s can only be bound to prefix %s", XMLNamespace, XMLPrefix)
	case d.Namespace == XMLNSNamespace:
		return fmt.Errorf("namespace %s cannot be declared", XMLNSNamespace)
	case d.Prefix != "" && d.Namespace == "":
		return fmt.Errorf("prefix %s cannot be bound to the empty namespace", d.Prefix)
	}
	return nil
}
