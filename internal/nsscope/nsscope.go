// Package nsscope tracks namespace prefix bindings per element scope.
package nsscope

// XMLNamespace is the namespace permanently bound to the xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

// Decl is one namespace declaration on an element.
type Decl struct {
	Prefix    string
	Namespace string
}

type scope struct {
	prefixes   map[string]string
	defaultNS  string
	decls      []Decl
	defaultSet bool
}

// Stack holds one scope per open element.
// Lookups walk from the innermost scope outwards, so inner declarations
// shadow outer ones with the same prefix.
type Stack struct {
	scopes []scope
}

// Push opens a scope with the given declarations and returns its depth.
func (s *Stack) Push(decls []Decl) int {
	sc := scope{decls: decls}
	for _, d := range decls {
		if d.Prefix == "" {
			sc.defaultNS = d.Namespace
			sc.defaultSet = true
			continue
		}
		if sc.prefixes == nil {
			sc.prefixes = make(map[string]string, len(decls))
		}
		sc.prefixes[d.Prefix] = d.Namespace
	}
	s.scopes = append(s.scopes, sc)
	return len(s.scopes) - 1
}

// Pop closes the innermost scope.
func (s *Stack) Pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Depth reports the number of open scopes.
func (s *Stack) Depth() int {
	return len(s.scopes)
}

// Lookup resolves a prefix in the innermost scope.
// The empty prefix resolves to the default namespace, or "" when none is declared.
func (s *Stack) Lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	if prefix == "" {
		for i := len(s.scopes) - 1; i >= 0; i-- {
			if s.scopes[i].defaultSet {
				return s.scopes[i].defaultNS, true
			}
		}
		return "", true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if ns, ok := s.scopes[i].prefixes[prefix]; ok {
			return ns, true
		}
	}
	return "", false
}

// Decls returns the declarations of the innermost scope.
func (s *Stack) Decls() []Decl {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1].decls
}
