// Package dyncatalog implements catalog.Catalog from a YAML description.
// Instances are *Object values holding their members in maps, so markup
// can be loaded without Go types for it.
//
//	namespaces:
//	  - uri: urn:shapes
//	    types:
//	      - name: Canvas
//	        content: Children
//	        members:
//	          - name: Title
//	          - name: Children
//	            collection: list
//	      - name: Label
//	        text: true
//	        args: [Text]
//	        members:
//	          - name: Text
//	    attached:
//	      - owner: Canvas
//	        name: Left
package dyncatalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document root.
type File struct {
	Namespaces []NamespaceSpec `yaml:"namespaces"`
}

// NamespaceSpec groups the types of one markup namespace.
type NamespaceSpec struct {
	URI      string         `yaml:"uri"`
	Types    []TypeSpec     `yaml:"types"`
	Attached []AttachedSpec `yaml:"attached,omitempty"`
}

// TypeSpec declares one type.
type TypeSpec struct {
	Name    string       `yaml:"name"`
	Content string       `yaml:"content,omitempty"`
	Scalar  string       `yaml:"scalar,omitempty"`
	Members []MemberSpec `yaml:"members,omitempty"`
	Args    []string     `yaml:"args,omitempty"`
	// Text allows creating the type from element text, stored in Object.Text.
	Text bool `yaml:"text,omitempty"`
	// Open resolves any member name as a single-valued member.
	Open bool `yaml:"open,omitempty"`
	// Extension makes instances markup extensions. The value "self" provides
	// the object itself; "text" provides Object.Text; "member:<Name>"
	// provides that member's value.
	Extension string `yaml:"extension,omitempty"`
}

// MemberSpec declares one member.
type MemberSpec struct {
	Name       string `yaml:"name"`
	Collection string `yaml:"collection,omitempty"`
	ReadOnly   bool   `yaml:"readonly,omitempty"`
}

// AttachedSpec declares an attached property.
type AttachedSpec struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// Load reads a YAML catalog description. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load catalog: empty document")
		}
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return Build(f)
}

// Parse is Load over a byte slice.
func Parse(data []byte) (*Catalog, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile reads a YAML catalog description from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
