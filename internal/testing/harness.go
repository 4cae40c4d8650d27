// Package harness runs YAML golden cases through the markup pipeline.
package harness

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/internal/xiter"
	"github.com/jacoelho/xaml/pkg/assembler"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/catalog/dyncatalog"
	"github.com/jacoelho/xaml/pkg/instruction"
	"github.com/jacoelho/xaml/pkg/protoparser"
	"github.com/jacoelho/xaml/pkg/xamlparser"
)

// Engine loads one document against a catalog.
type Engine interface {
	Load(c catalog.Catalog, r io.Reader) (any, error)
}

// Stages wires the three pipeline stages directly.
type Stages struct{}

// Load implements Engine.
func (Stages) Load(c catalog.Catalog, r io.Reader) (any, error) {
	protos := protoparser.New(protoparser.Config{Types: c}).Parse(r)
	ins := xamlparser.New(xamlparser.Config{Catalog: c}).Parse(protos)
	return assembler.New(assembler.Config{Catalog: c}).Assemble(ins)
}

// Suite is one golden file: a catalog and the cases loaded against it.
type Suite struct {
	Catalog dyncatalog.File `yaml:"catalog"`
	Cases   []Case          `yaml:"cases"`
}

// Case describes one golden scenario. Empty expectations are not checked.
type Case struct {
	Name         string   `yaml:"name"`
	Markup       string   `yaml:"markup"`
	Proto        []string `yaml:"proto,omitempty"`
	Instructions []string `yaml:"instructions,omitempty"`
	Graph        any      `yaml:"graph,omitempty"`
	Errors       []string `yaml:"errors,omitempty"`
}

// Result captures the output of every stage.
type Result struct {
	Proto        []string
	Instructions []string
	Graph        any
	// Err is the first error reported by any stage.
	Err error
}

// Diff stores side-by-side outcomes.
type Diff struct {
	Left  Result
	Right Result
}

// Equal reports whether both sides are equivalent.
func (d Diff) Equal() bool {
	return Equivalent(d.Left, d.Right)
}

// LoadSuite decodes a golden file and builds its catalog.
func LoadSuite(fsys fs.FS, name string) (*Suite, *dyncatalog.Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, nil, fmt.Errorf("read suite: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	c, err := dyncatalog.Build(s.Catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return &s, c, nil
}

// RunCase runs the proto and instruction stages for inspection and loads
// the document with engine.
func RunCase(engine Engine, c catalog.Catalog, tc Case) Result {
	var res Result
	res.Proto, res.Err = xiter.Collect2(xiter.Map2(
		protoparser.New(protoparser.Config{Types: c}).Parse(strings.NewReader(tc.Markup)),
		instruction.Proto.String,
	))
	protos := protoparser.New(protoparser.Config{Types: c}).Parse(strings.NewReader(tc.Markup))
	var err error
	res.Instructions, err = xiter.Collect2(xiter.Map2(
		xamlparser.New(xamlparser.Config{Catalog: c}).Parse(protos),
		instruction.Instruction.String,
	))
	if res.Err == nil {
		res.Err = err
	}
	if engine == nil {
		if res.Err == nil {
			res.Err = io.ErrUnexpectedEOF
		}
		return res
	}
	graph, err := engine.Load(c, strings.NewReader(tc.Markup))
	if err != nil {
		if res.Err == nil {
			res.Err = err
		}
		return res
	}
	res.Graph = dyncatalog.Plain(graph)
	return res
}

// Compare runs both engines and returns a diff.
func Compare(left, right Engine, c catalog.Catalog, tc Case) Diff {
	return Diff{
		Left:  RunCase(left, c, tc),
		Right: RunCase(right, c, tc),
	}
}

// Equivalent checks whether two results are behaviorally equivalent.
func Equivalent(left, right Result) bool {
	if !slices.Equal(Codes(left.Err), Codes(right.Err)) {
		return false
	}
	if !slices.Equal(left.Instructions, right.Instructions) {
		return false
	}
	return reflect.DeepEqual(left.Graph, right.Graph)
}

// Check compares a result against the case expectations and returns one
// message per mismatch.
func Check(tc Case, res Result) []string {
	var problems []string
	if len(tc.Proto) > 0 && !slices.Equal(tc.Proto, res.Proto) {
		problems = append(problems, mismatch("proto", tc.Proto, res.Proto))
	}
	if len(tc.Instructions) > 0 && !slices.Equal(tc.Instructions, res.Instructions) {
		problems = append(problems, mismatch("instructions", tc.Instructions, res.Instructions))
	}
	want := slices.Clone(tc.Errors)
	slices.SortStableFunc(want, cmp.Compare[string])
	if got := Codes(res.Err); !slices.Equal(want, got) {
		problems = append(problems, fmt.Sprintf("errors: want %v, got %v (%v)", want, got, res.Err))
	}
	if tc.Graph != nil && res.Err == nil {
		got, err := normalize(res.Graph)
		if err != nil {
			problems = append(problems, fmt.Sprintf("graph: %v", err))
		} else if !reflect.DeepEqual(tc.Graph, got) {
			problems = append(problems, mismatch("graph", tc.Graph, got))
		}
	}
	return problems
}

// Codes returns the sorted error codes carried by err.
func Codes(err error) []string {
	if err == nil {
		return nil
	}
	var codes []string
	if list, ok := xamlerrors.AsParseErrors(err); ok {
		for _, pe := range list {
			codes = append(codes, pe.Code)
		}
	} else if ae, ok := xamlerrors.AsAssignment(err); ok {
		codes = append(codes, ae.Code)
	} else {
		codes = append(codes, "unclassified")
	}
	slices.SortStableFunc(codes, cmp.Compare[string])
	return codes
}

// normalize round-trips v through YAML so it compares equal to decoded
// expectations.
func normalize(v any) (any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

func mismatch(what string, want, got any) string {
	return fmt.Sprintf("%s mismatch\nwant:\n%s\ngot:\n%s", what, dumper.Sdump(want), dumper.Sdump(got))
}
